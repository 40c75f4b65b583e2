package platform

import _ "embed"

var (
	//go:embed shaders/common.wgsl
	commonWGSL string
	//go:embed shaders/lit.wgsl
	litWGSL string
	//go:embed shaders/sss.wgsl
	subsurfaceWGSL string
	//go:embed shaders/shadow.wgsl
	shadowWGSL string
	//go:embed shaders/lines.wgsl
	linesWGSL string
	//go:embed shaders/background.wgsl
	backgroundWGSL string
)

// The surface pipelines share vertex stage and bindings.
var (
	litShader        = commonWGSL + litWGSL
	subsurfaceShader = commonWGSL + subsurfaceWGSL
)
