package llm

// ModelForMode centralizes the one decision the spec calls out as a
// collaborator concern: quick/standard route to the economy model,
// deep routes to the high-capability model. Every caller that needs a
// model name for a mode goes through here instead of re-deriving it.
func ModelForMode(mode, economyModel, deepModel string) string {
	if mode == "deep" {
		return deepModel
	}
	return economyModel
}

// TimeoutSecondsForMode returns the per-attempt LLM call timeout, in seconds,
// for a given mode. Falls back to the standard timeout for unknown
// modes rather than leaving a call unbounded.
func TimeoutSecondsForMode(mode string, quick, standard, deep int) int {
	switch mode {
	case "quick":
		return quick
	case "deep":
		return deep
	default:
		return standard
	}
}
