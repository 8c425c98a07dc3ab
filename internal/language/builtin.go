package language

// builtinEntries is the Burrow & Emeneau abbreviation table with the
// variant groups observed in the source database. Variant lists collect
// the regional and collector-attributed renderings that the reference
// dictionary folds into one language.
var builtinEntries = []Entry{
	{Canonical: "Ālu Kuṟumba", Abbreviations: []string{"ĀlKu."}},
	{Canonical: "Belari", Abbreviations: []string{"Bel."}},
	{Canonical: "Beṭṭa Kuruba", Abbreviations: []string{"Kurub."}},
	{Canonical: "Brahui", Abbreviations: []string{"Br."}},
	{Canonical: "Gadba", Abbreviations: []string{"Ga."}, Variants: []string{
		"Salur Gadba", "Ollari Gadba", "Kondekor Gadba", "Poya Gadba",
	}},
	{Canonical: "Gondi", Abbreviations: []string{"Go."}, Variants: []string{
		"Koya Gondi", "Muria Gondi", "Maria Gondi", "Betul Gondi",
		"Adilabad Gondi", "Mandla Gondi (Phailbus)", "Maria Gondi (Mitchell)",
		"Mandla Gondi (Williamson)", "Seoni Gondi", "Gommu Gondi",
		"Yeotmal Gondi", "Chindwara Gondi", "Durg Gondi", "Chanda Gondi",
		"Mandla Gondi", "Maria Gondi (Lind)", "Maria Gondi (Smith)",
	}},
	{Canonical: "Iruḷa", Abbreviations: []string{"Ir."}},
	{Canonical: "Kannada", Abbreviations: []string{"Ka."}},
	{Canonical: "Kodagu", Abbreviations: []string{"Koḍ."}},
	{Canonical: "Kolami", Abbreviations: []string{"Kol."}, Variants: []string{
		"Kinwat Kolami", "Kolami (Setumadhava Rao)",
	}},
	{Canonical: "Konda", Abbreviations: []string{"Konḍa"}, Variants: []string{
		"Konda (Burrow/Bhattacharya)",
	}},
	{Canonical: "Koraga", Abbreviations: []string{"Kor."}},
	{Canonical: "Kota", Abbreviations: []string{"Ko."}},
	{Canonical: "Kui", Abbreviations: []string{"Kui"}, Variants: []string{
		"Khuttia Kui",
	}},
	{Canonical: "Kurukh", Abbreviations: []string{"Kur."}},
	{Canonical: "Kuwi", Abbreviations: []string{"Kuwi"}, Variants: []string{
		"Kuwi (Schulze)", "Kuwi (Fitzgerald)", "Kuwi (Israel)",
		"Sunkarametta Kuwi", "Kuwi (Mahanti)", "Tekriya Kuwi", "Dongriya Kuwi",
		"Parja Kuwi",
	}},
	{Canonical: "Malayalam", Abbreviations: []string{"Ma."}},
	{Canonical: "Malto", Abbreviations: []string{"Malt."}},
	{Canonical: "Manda", Abbreviations: []string{"Manḍ."}},
	{Canonical: "Naiki", Abbreviations: []string{"Nk. (Ch.)"}},
	{Canonical: "Naikri", Abbreviations: []string{"Nk."}},
	{Canonical: "Parji", Abbreviations: []string{"Pa."}},
	{Canonical: "Pālu Kuṟumba", Abbreviations: []string{"PālKu."}},
	{Canonical: "Pengo", Abbreviations: []string{"Pe."}},
	{Canonical: "Proto-Dravidian", Abbreviations: []string{"Dr.", "PDr."}},
	{Canonical: "Tamil", Abbreviations: []string{"Ta."}},
	{Canonical: "Telugu", Abbreviations: []string{"Te."}, Variants: []string{
		"Telugu (Krishnamurti)", "Inscriptional Telugu", "Merolu Telugu",
		"Proto-Telugu",
	}},
	{Canonical: "Toda", Abbreviations: []string{"To."}},
	{Canonical: "Tulu", Abbreviations: []string{"Tu."}},
}

// BuiltinEntries returns a copy of the built-in language table, mainly
// for display by the languages subcommand.
func BuiltinEntries() []Entry {
	out := make([]Entry, len(builtinEntries))
	copy(out, builtinEntries)
	return out
}
