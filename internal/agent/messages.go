package agent

// User-facing validation replies (HTML).
const (
	msgEmptyQuestion      = "Pertanyaan tidak boleh kosong. Gunakan format: <code>/tanya [pertanyaan Anda]</code>"
	msgEmptyImagePrompt   = "Deskripsi gambar tidak boleh kosong. Gunakan format: <code>/gambar [deskripsi gambar]</code>"
	msgEditPromptRequired = "Untuk mengedit gambar yang di-reply dengan perintah <code>/gambar</code>, Anda harus menyertakan prompt editan setelah perintah <code>/gambar</code>.\nContoh: <code>/gambar ubah jadi kartun</code>"

	msgCaptionEditEmpty  = "Deskripsi untuk mengedit gambar tidak boleh kosong."
	msgReplyEditEmpty    = "Deskripsi untuk mengedit gambar tidak boleh kosong setelah perintah /gambar."
	msgBotImageEditEmpty = "Deskripsi/prompt tidak boleh kosong saat membalas gambar dari bot untuk diedit."
	msgMentionEditEmpty  = "Untuk mengedit gambar dengan mention, sertakan deskripsi/prompt pada caption atau teks pesan."
)

// answerLabel prefixes every answer the bot sends. Telegram returns replied
// messages as plain text, so both forms are stripped.
const answerLabel = "Jawaban:"
