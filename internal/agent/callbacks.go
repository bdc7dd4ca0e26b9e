package agent

import "github.com/kawainime/TelegramGemini/internal/domain"

// ClassifyCallback maps an inline button payload to its action. Unknown
// payloads yield NoAction.
func ClassifyCallback(cb domain.CallbackQuery) domain.Action {
	switch cb.Data {
	case domain.CallbackAskNew:
		return domain.ShowGuide{Topic: domain.GuideAsk}
	case domain.CallbackImageNew:
		return domain.ShowGuide{Topic: domain.GuideImage}
	case domain.CallbackAskEdit:
		return domain.ShowGuide{Topic: domain.GuideAsk, Edit: true}
	case domain.CallbackImageEdit:
		return domain.ShowGuide{Topic: domain.GuideImage, Edit: true}
	case domain.CallbackConfirmSupport:
		return domain.ConfirmSupport{}
	}
	return domain.NoAction{}
}
