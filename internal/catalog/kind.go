package catalog

// ItemKind selects the selection rules of an item. Exactly one applies.
type ItemKind int

const (
	KindRegular ItemKind = iota
	KindLtoRegular
	KindSpecialPack
)

func (k ItemKind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindLtoRegular:
		return "lto_regular"
	case KindSpecialPack:
		return "special_pack"
	default:
		return "unknown"
	}
}

// SingleSelect reports whether at most one variant may be selected.
func (k ItemKind) SingleSelect() bool {
	return k != KindSpecialPack
}

// SizeRequired reports whether every selected variant needs a pricing row.
// Limited-offer dishes may be ordered without picking a size.
func (k ItemKind) SizeRequired() bool {
	return k != KindLtoRegular
}

// DetectKind is the only place the kind rule lives. A special pack is
// recognised from its variant descriptions, not from a stored flag.
func DetectKind(m *Model) ItemKind {
	for _, v := range m.Variants {
		if IsPackDescription(v.Description) {
			return KindSpecialPack
		}
	}
	if m.IsLimitedOffer {
		return KindLtoRegular
	}
	return KindRegular
}
