package domain

// Action is the single decided next step for one inbound event.
// The set of implementations is closed.
type Action interface {
	Kind() string
	isAction()
}

// GuideTopic selects which guide text ShowGuide renders.
type GuideTopic string

const (
	GuideWelcome GuideTopic = "welcome" // /start, /help, bot added to a group
	GuidePrompt  GuideTopic = "prompt"  // unaddressed private message
	GuideAsk     GuideTopic = "ask"
	GuideImage   GuideTopic = "image"
)

type AnswerQuestion struct {
	Question     string
	PriorContext string
}

type GenerateImage struct {
	Prompt string
}

type EditImage struct {
	Image  Attachment
	Prompt string
}

// ShowGuide renders a guide. Edit asks the handler to replace the message that
// carried the pressed button instead of sending a new one.
type ShowGuide struct {
	Topic GuideTopic
	Edit  bool
}

type ShowSupportInfo struct{}

type ConfirmSupport struct{}

type ShowPersona struct{}

type SetPersona struct {
	Argument string
}

type NoAction struct{}

// ValidationError carries user-facing guidance; no external call is made.
type ValidationError struct {
	Message string
}

func (AnswerQuestion) Kind() string  { return "answer_question" }
func (GenerateImage) Kind() string   { return "generate_image" }
func (EditImage) Kind() string       { return "edit_image" }
func (ShowGuide) Kind() string       { return "show_guide" }
func (ShowSupportInfo) Kind() string { return "show_support_info" }
func (ConfirmSupport) Kind() string  { return "confirm_support" }
func (ShowPersona) Kind() string     { return "show_persona" }
func (SetPersona) Kind() string      { return "set_persona" }
func (NoAction) Kind() string        { return "no_action" }
func (ValidationError) Kind() string { return "validation_error" }

func (AnswerQuestion) isAction()  {}
func (GenerateImage) isAction()   {}
func (EditImage) isAction()       {}
func (ShowGuide) isAction()       {}
func (ShowSupportInfo) isAction() {}
func (ConfirmSupport) isAction()  {}
func (ShowPersona) isAction()     {}
func (SetPersona) isAction()      {}
func (NoAction) isAction()        {}
func (ValidationError) isAction() {}

// Inline button payloads. Buttons are built by the action handlers and
// mapped back to actions by the router.
const (
	CallbackAskNew         = "guide_tanya_new"
	CallbackImageNew       = "guide_gambar_new"
	CallbackAskEdit        = "guide_tanya_edit"
	CallbackImageEdit      = "guide_gambar_edit"
	CallbackConfirmSupport = "donation_confirmation_prompt"
)
