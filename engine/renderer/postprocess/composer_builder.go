package postprocess

// ComposerBuilderOption is a functional option applied to a composer during construction via NewComposer.
type ComposerBuilderOption func(*composer)

// WithRenderToScreen sets whether the last enabled pass draws to the surface. When disabled
// the chain result stays in the composer's targets. Defaults to true.
//
// Parameters:
//   - toScreen: true to present the last pass on the surface
//
// Returns:
//   - ComposerBuilderOption: a function that applies the option to a composer
func WithRenderToScreen(toScreen bool) ComposerBuilderOption {
	return func(c *composer) {
		c.renderToScreen = toScreen
	}
}
