package domain

// VariantProfile describes how the two request kinds differ. The
// lifecycle service is parameterized by this descriptor instead of
// carrying two parallel pipelines.
type VariantProfile struct {
	Kind RequestKind

	// RequiredLineTypes lists the line items that must all be paid before
	// the deposit can be confirmed, given the approved terms.
	RequiredLineTypes func(t Terms) []LineType

	// RefundReachable marks whether the terminal refunded deposit state
	// exists for this kind.
	RefundReachable bool
}

var variantProfiles = map[RequestKind]VariantProfile{
	KindRentalApplication: {
		Kind: KindRentalApplication,
		RequiredLineTypes: func(t Terms) []LineType {
			req := []LineType{LineMoveInDeposit}
			if t.SecurityDeposit > 0 {
				req = append(req, LineSecurityDeposit)
			}
			return req
		},
		RefundReachable: true,
	},
	KindEventHosting: {
		Kind: KindEventHosting,
		RequiredLineTypes: func(t Terms) []LineType {
			req := []LineType{LineReservationFee}
			if t.SecurityDeposit > 0 {
				req = append(req, LineSecurityDeposit)
			}
			return req
		},
		RefundReachable: false,
	},
}

// ProfileFor returns the variant descriptor for a request kind. Unknown
// kinds fall back to the rental profile.
func ProfileFor(kind RequestKind) VariantProfile {
	if p, ok := variantProfiles[kind]; ok {
		return p
	}
	return variantProfiles[KindRentalApplication]
}

// ValidKind reports whether kind is one of the supported variants.
func ValidKind(kind RequestKind) bool {
	_, ok := variantProfiles[kind]
	return ok
}
