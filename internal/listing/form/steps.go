package form

// Advance validates the current step and moves forward on success. On
// failure the state is returned unchanged together with the field errors.
// Advancing from the last step only validates it.
func Advance(s State, schema *Schema) (State, ValidationErrors) {
	if errs := schema.ValidateStep(s, s.Step); errs != nil {
		return s, errs
	}
	if s.Step >= LastStep {
		return s, nil
	}
	return Reduce(s, GoToStep{Step: s.Step + 1}), nil
}

// Retreat always succeeds and never goes below the first step.
func Retreat(s State) State {
	return Reduce(s, GoToStep{Step: s.Step - 1})
}
