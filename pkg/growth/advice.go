package growth

import (
	"fmt"
	"strings"
)

// Locale selects the language of labels and advice.
type Locale string

const (
	Indonesian Locale = "id"
	English    Locale = "en"
)

func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return Indonesian, nil
	case "en":
		return English, nil
	}
	return "", fmt.Errorf("unknown locale %q (want id or en)", s)
}

type guidance struct {
	label  string
	advice string
}

var guidanceBook = map[Locale]map[Category]guidance{
	Indonesian: {
		SeverelyStunted: {
			label: "Sangat Pendek (Severely Stunted)",
			advice: "Segera bawa anak ke tenaga kesehatan untuk pemeriksaan dan kemungkinan suplementasi. " +
				"Berikan makanan tinggi protein hewani (daging, ikan, telur) dan nabati (tahu, tempe, kacang-kacangan). " +
				"Jika <6 bulan berikan ASI eksklusif, jika >6 bulan berikan MPASI bergizi. " +
				"Jaga kebersihan agar terhindar dari infeksi, serta pantau pertumbuhan tiap bulan.",
		},
		Stunted: {
			label: "Pendek (Stunted)",
			advice: "Perbaiki pola makan dengan makanan bergizi tinggi energi dan protein, berikan tiga kali makan utama " +
				"dan dua kali selingan sehat. Lengkapi imunisasi dan berikan stimulasi tumbuh kembang seperti bermain, berbicara, " +
				"dan bernyanyi. Konsultasikan kebutuhan gizi ke tenaga kesehatan dan pantau pertumbuhan secara rutin.",
		},
		Normal: {
			label: "Normal (Tidak Stunting)",
			advice: "Pertahankan pola makan bergizi seimbang sesuai pedoman 'Isi Piringku'. " +
				"Lakukan pemantauan rutin di posyandu, jaga kebersihan lingkungan dan air minum, " +
				"serta dorong aktivitas fisik dan stimulasi perkembangan. " +
				"Berikan kasih sayang dan perhatian agar tumbuh kembang anak tetap optimal.",
		},
		Tall: {
			label: "Tinggi (Tall)",
			advice: "Anak memiliki tinggi badan di atas rata-rata. " +
				"Tetap jaga pola makan bergizi seimbang, dukung aktivitas fisik, " +
				"serta terus lakukan pemantauan rutin agar pertumbuhan anak tetap sehat dan optimal.",
		},
	},
	English: {
		SeverelyStunted: {
			label: "Severely Stunted",
			advice: "Take the child to a health worker promptly for examination and possible supplementation. " +
				"Provide foods rich in animal protein (meat, fish, eggs) and plant protein (tofu, tempeh, legumes). " +
				"Breastfeed exclusively under 6 months; after 6 months give nutritious complementary foods. " +
				"Keep hygiene up to prevent infections and monitor growth every month.",
		},
		Stunted: {
			label: "Stunted",
			advice: "Improve the diet with energy- and protein-rich foods: three main meals and two healthy snacks a day. " +
				"Complete immunizations and stimulate development through play, talking and singing. " +
				"Consult a health worker about nutritional needs and monitor growth regularly.",
		},
		Normal: {
			label: "Normal (Not Stunted)",
			advice: "Keep a balanced, nutritious diet. Attend routine growth monitoring, " +
				"keep the home environment and drinking water clean, and encourage physical activity " +
				"and developmental stimulation.",
		},
		Tall: {
			label: "Tall",
			advice: "The child's height is above average. Keep a balanced diet, support physical activity " +
				"and continue routine monitoring.",
		},
	},
}

// Label returns the display label of a category.
func (l Locale) Label(c Category) string {
	return l.lookup(c).label
}

// Advice returns the guidance text for a category.
func (l Locale) Advice(c Category) string {
	return l.lookup(c).advice
}

func (l Locale) lookup(c Category) guidance {
	book, ok := guidanceBook[l]
	if !ok {
		book = guidanceBook[Indonesian]
	}
	return book[c]
}
