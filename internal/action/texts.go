package action

// Replies sent to users. Strings used with ParseHTML must be valid Telegram HTML.
const (
	answerHeader = "<b>Jawaban:</b>\n"

	noAnswerText     = "Maaf, tidak ada jawaban."
	noImageText      = "Maaf, tidak dapat membuat gambar."
	noEditResultText = "Tidak ada gambar yang dihasilkan dari editan."

	answerFailedText   = "Maaf, terjadi kesalahan saat memproses pertanyaan Anda."
	generateFailedText = "Terjadi kesalahan saat membuat gambar."
	editFailedText     = "Terjadi kesalahan saat memproses editan gambar."
	emptyEditPrompt    = "Deskripsi/prompt untuk mengedit gambar tidak boleh kosong."
)

const (
	welcomeText = "GEMINI TELEGRAM BOT\n" +
		"Pilih salah satu opsi di bawah atau gunakan perintah langsung:\n" +
		"/tanya [pertanyaan Anda]\n" +
		"/gambar [deskripsi gambar]"

	promptText     = "Silakan balas (reply) pesan sebelumnya untuk melanjutkan percakapan, atau pilih salah satu opsi di bawah ini:"
	askGuideText   = "Untuk bertanya pada AI, ketik perintah diikuti pertanyaan Anda.\nContoh: <code>/tanya Apa itu kecerdasan buatan?</code>"
	imageGuideText = "Untuk membuat gambar, ketik perintah diikuti deskripsi gambar.\nContoh: <code>/gambar Kucing lucu memakai topi astronot</code>"
)

const (
	personaCurrentFmt  = "Persona AI saat ini adalah:\n\n---\n%s\n---"
	personaNoneText    = "Saat ini tidak ada persona khusus yang diatur untuk AI."
	personaReadFailed  = "Gagal membaca persona. Silakan cek log server."
	personaNotConfig   = "Fitur ini belum dikonfigurasi dengan benar oleh admin (ADMIN_USER_ID belum diatur)."
	personaDenied      = "Maaf, Anda tidak memiliki izin untuk menggunakan perintah ini."
	personaUsageFmt    = "Untuk mengatur persona baru, gunakan format:\n<code>/setpersona [teks persona baru]</code>\n\nUntuk menghapus persona, gunakan:\n<code>/setpersona hapus</code>\n\nPersona saat ini:\n%s"
	personaUnsetLabel  = "(Belum diatur)"
	personaCleared     = "Persona berhasil dihapus."
	personaClearFailed = "Gagal menghapus persona. Silakan cek log server."
	personaUpdated     = "Persona AI berhasil diperbarui!"
	personaWriteFailed = "Gagal memperbarui persona. Silakan cek log server."
	personaClearWord   = "hapus"
)

const (
	supportIntro      = "Dukungan Anda sangat berarti bagi pengembangan bot ini! 🙏"
	supportConfirmFmt = "Terima kasih atas dukungannya!\n\n" +
		"Untuk konfirmasi, silakan kirimkan bukti dukungan Anda beserta <b>User ID Telegram</b> Anda (agar mudah dicatat oleh admin):\n" +
		"<code>%d</code>\n\n" +
		"Kepada admin: @%s\n\n" +
		"Admin akan segera memverifikasi. Jika dukungan ini terkait dengan pembukaan akses fitur tertentu, admin akan menginformasikannya setelah verifikasi."

	defaultAdminUsername = "PengembangBot"
)
