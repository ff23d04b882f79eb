package mirror

// SelectVariant returns the variant with the highest bandwidth. Ties resolve
// to the first-encountered variant, so selection is stable with respect to
// playlist order. ok is false when variants is empty; callers then treat the
// manifest URL itself as a media playlist.
func SelectVariant(variants []Variant) (best Variant, ok bool) {
	if len(variants) == 0 {
		return Variant{}, false
	}
	best = variants[0]
	for _, v := range variants[1:] {
		if v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best, true
}
