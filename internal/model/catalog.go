package model

// CatalogEntry is one of the fixed daily wellness items every user gets.
type CatalogEntry struct {
	Key    string
	Text   string
	Detail string
}

var mandatoryCatalog = []CatalogEntry{
	{
		Key:    "tidur",
		Text:   "Tidur cukup",
		Detail: "Minimal 6–8 jam, tidur sebelum jam 23.00",
	},
	{
		Key:    "makan",
		Text:   "Makan anti-inflamasi",
		Detail: "Perbanyak sayur, buah, ikan\nKurangi gorengan, gula, snack kemasan, susu sapi",
	},
	{
		Key:    "minum",
		Text:   "Minum air putih cukup",
		Detail: "Target 2 liter/hari",
	},
	{
		Key:    "gerak",
		Text:   "Gerak ringan tiap hari",
		Detail: "Jalan pagi 15–30 menit, atau peregangan ringan",
	},
	{
		Key:    "stres",
		Text:   "Kelola stres",
		Detail: "Tulis jurnal harian\nLatihan napas 4-4-4 detik\nCurhat, jangan pendam terus",
	},
	{
		Key:    "kimia",
		Text:   "Hindari paparan bahan kimia ringan",
		Detail: "Jangan terlalu sering pakai parfum, pewangi ruangan, plastik panas",
	},
	{
		Key:    "obat",
		Text:   "Jangan minum obat/booster sembarangan",
		Detail: "Hati-hati konsumsi antibiotik, penghilang nyeri, suplemen berlebihan",
	},
}

// MandatoryCatalog returns the ordered list of mandatory daily items.
// The returned slice is a copy and may be modified by the caller.
func MandatoryCatalog() []CatalogEntry {
	out := make([]CatalogEntry, len(mandatoryCatalog))
	copy(out, mandatoryCatalog)
	return out
}
