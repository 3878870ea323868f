package pipeline

// User-facing texts. Apologies stay short and persona-free.
const (
	MsgChatDisabled = "Maaf, fitur chat sedang tidak aktif karena kunci API layanan AI belum dikonfigurasi."

	msgTopicRequired       = "Mau cari gambar apa? Ketik %s diikuti topiknya, misalnya \"%s ayam\"."
	msgNoRelevantImages    = "Maaf, Atang ga nemu gambarnya."
	msgEmbeddingFailed     = "Maaf, terjadi kesalahan saat memproses pertanyaanmu."
	msgCompletionStatus    = "Maaf, layanan AI sedang bermasalah (status %d)."
	msgCompletionTimeout   = "Maaf, layanan AI terlalu lama merespons. Coba lagi sebentar lagi."
	msgCompletionTransport = "Maaf, koneksi ke layanan AI terputus."
	msgEmptyCompletion     = "Maaf, AI tidak memberikan jawaban. Coba tanyakan dengan cara lain."
	msgInternal            = "Maaf, terjadi kesalahan pada sistem."
)
