package configurator

// Validate gates every compile. Checks run in order and the first failure
// wins. It never mutates anything; nil means the selection may be compiled.
//
// buffered is the number of orders already saved in this session. When
// checkFreeDrinks is false the complimentary drink quota is not enforced
// (for example when the drink list could not be loaded).
func Validate(ctx *SessionContext, s State, buffered int, checkFreeDrinks bool) *ValidationFailure {
	if len(s.SelectedVariants) == 0 {
		if buffered > 0 {
			return nil
		}
		return failNoVariant()
	}

	if ctx.Kind.SizeRequired() {
		for _, id := range s.SelectedVariants {
			if _, ok := s.PricingPerVariant[id]; !ok {
				return failSize()
			}
		}
	}

	if checkFreeDrinks {
		if required := RequiredFreeDrinks(ctx, s); required > 0 && s.AssignedFreeDrinks() == 0 {
			return failFreeDrinks(required)
		}
	}

	return nil
}
