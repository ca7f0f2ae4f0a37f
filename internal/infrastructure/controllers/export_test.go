package controllers

import "io"

// RenderReport exports renderReport for testing.
var RenderReport = renderReport //nolint:gochecknoglobals // test export

// WithOutput redirects the report output for testing.
func (it *ResolveController) WithOutput(out io.Writer) *ResolveController {
	it.out = out
	return it
}
