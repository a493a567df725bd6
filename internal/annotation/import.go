package annotation

import "smoke-annotator/internal/geometry"

// ImportPredictionsAsRectangles turns model predictions into rectangles,
// skipping invalid boxes and any box similar to one already drawn or already
// accepted earlier in the same batch. Importing the same predictions twice
// therefore adds nothing the second time.
func ImportPredictionsAsRectangles(
	predictions []geometry.NormalizedBox,
	classification Classification,
	existing []DrawnRectangle,
	threshold float64,
	newID func() string,
) []DrawnRectangle {
	seen := make([]geometry.NormalizedBox, 0, len(existing)+len(predictions))
	for _, r := range existing {
		seen = append(seen, r.Box)
	}

	var out []DrawnRectangle
	for _, p := range predictions {
		if !p.Valid() || containsSimilar(seen, p, threshold) {
			continue
		}
		seen = append(seen, p)
		out = append(out, DrawnRectangle{ID: newID(), Box: p, Classification: classification})
	}
	return out
}

// CountImportable returns how many predictions ImportPredictionsAsRectangles
// would materialise.
func CountImportable(predictions []geometry.NormalizedBox, existing []DrawnRectangle, threshold float64) int {
	return len(ImportPredictionsAsRectangles(predictions, Wildfire, existing, threshold, func() string { return "" }))
}

func containsSimilar(boxes []geometry.NormalizedBox, box geometry.NormalizedBox, threshold float64) bool {
	for _, b := range boxes {
		if geometry.BoxesAreSimilar(b, box, threshold) {
			return true
		}
	}
	return false
}
