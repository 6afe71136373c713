package types

// RecipeConfig is the per-recipe section of the configuration file. Empty
// fields keep the built-in values of a registered recipe; a name that is
// not registered defines a new recipe and must set Legacy, Replacement and
// MatcherFactories.
type RecipeConfig struct {
	Enabled          *bool          `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Description      string         `yaml:"description,omitempty" json:"description,omitempty"`
	Legacy           string         `yaml:"legacy,omitempty" json:"legacy,omitempty"`
	Replacement      string         `yaml:"replacement,omitempty" json:"replacement,omitempty"`
	MatcherFactories []string       `yaml:"matcher-factories,omitempty" json:"matcher-factories,omitempty"`
	Overloads        map[int]string `yaml:"overloads,omitempty" json:"overloads,omitempty"`
}

// IsEnabled reports whether the recipe should run. Recipes are enabled
// unless switched off explicitly.
func (c RecipeConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
