package shaders

import (
	_ "embed"
)

//go:embed particles.wgsl
var ParticlesWGSL string

//go:embed fade.wgsl
var FadeWGSL string

//go:embed blit.wgsl
var BlitWGSL string
