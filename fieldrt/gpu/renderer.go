package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/gekko3d/pixeldust/fieldrt/shaders"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupportedSurface is returned when the adapter cannot present to the window surface.
var ErrUnsupportedSurface = errors.New("unsupported surface")

const accumFormat = wgpu.TextureFormatRGBA16Float

// FieldRenderer draws the particle field with WebGPU.
//
// Particles are accumulated in an offscreen texture that survives between
// frames. Each frame fades that texture, adds the particles on top and then
// copies it to the swapchain.
type FieldRenderer struct {
	Window     *glfw.Window
	Camera     core.Camera
	Background mgl32.Vec4
	Intensity  float32

	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	particlePipeline *wgpu.RenderPipeline
	fadePipeline     *wgpu.RenderPipeline
	blitPipeline     *wgpu.RenderPipeline

	paramsBuffer   *wgpu.Buffer
	fadeBuffer     *wgpu.Buffer
	particleBG     *wgpu.BindGroup
	fadeBG         *wgpu.BindGroup
	blitBG         *wgpu.BindGroup
	sampler        *wgpu.Sampler
	instanceBuffer *wgpu.Buffer
	instanceCount  uint32

	accumTexture *wgpu.Texture
	accumView    *wgpu.TextureView
	clearAccum   bool
}

func NewFieldRenderer(window *glfw.Window, camera core.Camera) (*FieldRenderer, error) {
	r := &FieldRenderer{
		Window:     window,
		Camera:     camera,
		Background: mgl32.Vec4{0, 0, 0, 1},
		Intensity:  0.35,
	}
	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *FieldRenderer) init() error {
	r.Instance = wgpu.CreateInstance(nil)
	r.Surface = r.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(r.Window))

	adapter, err := r.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	r.Adapter = adapter

	r.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	r.Queue = r.Device.GetQueue()

	width, height := r.Window.GetFramebufferSize()
	format, alpha, err := surfaceFormat(r.Surface.GetCapabilities(adapter))
	if err != nil {
		return err
	}
	r.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   alpha,
	}
	r.Surface.Configure(adapter, r.Device, r.Config)

	if err := r.createPipelines(); err != nil {
		return err
	}

	r.paramsBuffer, err = r.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleParams",
		Size:  uint64(unsafe.Sizeof(ParticleParams{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	r.fadeBuffer, err = r.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "FadeParams",
		Size:  uint64(unsafe.Sizeof(FadeParams{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	r.particleBG, err = r.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ParticleBG",
		Layout: r.particlePipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.paramsBuffer, Size: r.paramsBuffer.GetSize()},
		},
	})
	if err != nil {
		return err
	}
	r.fadeBG, err = r.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "FadeBG",
		Layout: r.fadePipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.fadeBuffer, Size: r.fadeBuffer.GetSize()},
		},
	})
	if err != nil {
		return err
	}

	r.sampler, err = r.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	return r.setupAccumulation(width, height)
}

// surfaceFormat picks the preferred format and alpha mode. Adapters that cannot
// present to the surface report empty lists.
func surfaceFormat(caps wgpu.SurfaceCapabilities) (wgpu.TextureFormat, wgpu.CompositeAlphaMode, error) {
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return 0, 0, fmt.Errorf("%w: surface reports no formats or alpha modes", ErrUnsupportedSurface)
	}
	return caps.Formats[0], caps.AlphaModes[0], nil
}

func (r *FieldRenderer) createPipelines() error {
	particleMod, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ParticleShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticlesWGSL},
	})
	if err != nil {
		return fmt.Errorf("particle shader: %w", err)
	}
	defer particleMod.Release()

	fadeMod, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "FadeShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FadeWGSL},
	})
	if err != nil {
		return fmt.Errorf("fade shader: %w", err)
	}
	defer fadeMod.Release()

	blitMod, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "BlitShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlitWGSL},
	})
	if err != nil {
		return fmt.Errorf("blit shader: %w", err)
	}
	defer blitMod.Release()

	primitive := wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeNone,
	}
	multisample := wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF}

	r.particlePipeline, err = r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "ParticlePipeline",
		Vertex: wgpu.VertexState{
			Module:     particleMod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.ParticleVertex{})),
				StepMode:    wgpu.VertexStepModeInstance,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32, Offset: 12, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x3, Offset: 16, ShaderLocation: 2},
					{Format: wgpu.VertexFormatFloat32, Offset: 28, ShaderLocation: 3},
					{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 4},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     particleMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    accumFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
					},
					Alpha: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
					},
				},
			}},
		},
		Primitive:   primitive,
		Multisample: multisample,
	})
	if err != nil {
		return fmt.Errorf("particle pipeline: %w", err)
	}

	r.fadePipeline, err = r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "FadePipeline",
		Vertex: wgpu.VertexState{
			Module:     fadeMod,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     fadeMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    accumFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
					},
					Alpha: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
					},
				},
			}},
		},
		Primitive:   primitive,
		Multisample: multisample,
	})
	if err != nil {
		return fmt.Errorf("fade pipeline: %w", err)
	}

	r.blitPipeline, err = r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "BlitPipeline",
		Vertex: wgpu.VertexState{
			Module:     blitMod,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     blitMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.Config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive:   primitive,
		Multisample: multisample,
	})
	if err != nil {
		return fmt.Errorf("blit pipeline: %w", err)
	}
	return nil
}

// setupAccumulation (re)creates the trail texture. Its first pass clears to Background.
func (r *FieldRenderer) setupAccumulation(w, h int) error {
	if w == 0 || h == 0 {
		return nil
	}
	if r.accumView != nil {
		r.accumView.Release()
	}
	if r.accumTexture != nil {
		r.accumTexture.Release()
	}
	if r.blitBG != nil {
		r.blitBG.Release()
	}

	var err error
	r.accumTexture, err = r.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "TrailAccumulation",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        accumFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return err
	}
	r.accumView, err = r.accumTexture.CreateView(nil)
	if err != nil {
		return err
	}
	r.blitBG, err = r.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "BlitBG",
		Layout: r.blitPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: r.accumView},
			{Binding: 1, Sampler: r.sampler},
		},
	})
	if err != nil {
		return err
	}
	r.clearAccum = true
	return nil
}

func (r *FieldRenderer) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	r.Config.Width = uint32(w)
	r.Config.Height = uint32(h)
	r.Surface.Configure(r.Adapter, r.Device, r.Config)
	return r.setupAccumulation(w, h)
}

// Attach uploads the particle set as one instance buffer. It is called once per set.
func (r *FieldRenderer) Attach(set *core.ParticleSet) error {
	if r.instanceBuffer != nil {
		r.instanceBuffer.Release()
		r.instanceBuffer = nil
	}
	r.instanceCount = 0
	verts := set.Vertices()
	if len(verts) == 0 {
		return nil
	}

	size := uint64(len(verts)) * uint64(unsafe.Sizeof(core.ParticleVertex{}))
	buf, err := r.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleInstances",
		Size:  size,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("instance buffer: %w", err)
	}
	r.Queue.WriteBuffer(buf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), size))
	r.instanceBuffer = buf
	r.instanceCount = uint32(len(verts))
	return nil
}

func (r *FieldRenderer) ParticleCount() int { return int(r.instanceCount) }

func (r *FieldRenderer) aspect() float32 {
	if r.Config.Height == 0 {
		return 1
	}
	return float32(r.Config.Width) / float32(r.Config.Height)
}

func (r *FieldRenderer) BeginFrame() (core.Frame, error) {
	if r.Window.ShouldClose() {
		return nil, core.ErrRenderingUnavailable
	}
	w, h := r.Window.GetFramebufferSize()
	if w == 0 || h == 0 {
		// minimized
		return nil, core.ErrRenderingUnavailable
	}
	if uint32(w) != r.Config.Width || uint32(h) != r.Config.Height {
		if err := r.Resize(w, h); err != nil {
			return nil, err
		}
	}

	tex, err := r.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRenderingUnavailable, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("%w: %v", core.ErrRenderingUnavailable, err)
	}
	return &gpuFrame{r: r, texture: tex, view: view}, nil
}

func (r *FieldRenderer) Release() {
	release := []interface{ Release() }{}
	add := func(v interface{ Release() }, ok bool) {
		if ok {
			release = append(release, v)
		}
	}
	add(r.instanceBuffer, r.instanceBuffer != nil)
	add(r.blitBG, r.blitBG != nil)
	add(r.particleBG, r.particleBG != nil)
	add(r.fadeBG, r.fadeBG != nil)
	add(r.paramsBuffer, r.paramsBuffer != nil)
	add(r.fadeBuffer, r.fadeBuffer != nil)
	add(r.accumView, r.accumView != nil)
	add(r.accumTexture, r.accumTexture != nil)
	add(r.sampler, r.sampler != nil)
	add(r.particlePipeline, r.particlePipeline != nil)
	add(r.fadePipeline, r.fadePipeline != nil)
	add(r.blitPipeline, r.blitPipeline != nil)
	add(r.Queue, r.Queue != nil)
	add(r.Device, r.Device != nil)
	add(r.Adapter, r.Adapter != nil)
	add(r.Surface, r.Surface != nil)
	add(r.Instance, r.Instance != nil)
	for _, v := range release {
		v.Release()
	}
	*r = FieldRenderer{Window: r.Window, Camera: r.Camera}
}

type gpuFrame struct {
	r       *FieldRenderer
	texture *wgpu.Texture
	view    *wgpu.TextureView

	fade      core.Fade
	uniforms  core.Uniforms
	particles bool
}

func (f *gpuFrame) Fade(fd core.Fade) { f.fade = fd }

func (f *gpuFrame) DrawParticles(u core.Uniforms) {
	f.uniforms = u
	f.particles = true
}

func (f *gpuFrame) End() error {
	r := f.r
	defer f.texture.Release()
	defer f.view.Release()

	fade := NewFadeParams(f.fade)
	r.Queue.WriteBuffer(r.fadeBuffer, 0, asBytes(&fade))
	params := NewParticleParams(r.Camera, r.aspect(), f.uniforms, r.Intensity)
	r.Queue.WriteBuffer(r.paramsBuffer, 0, asBytes(&params))

	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	load := wgpu.LoadOpLoad
	if r.clearAccum {
		load = wgpu.LoadOpClear
		r.clearAccum = false
	}
	bg := r.Background
	trail := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       r.accumView,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(bg[0]), G: float64(bg[1]), B: float64(bg[2]), A: float64(bg[3])},
		}},
	})
	if f.fade.Alpha > 0 {
		trail.SetPipeline(r.fadePipeline)
		trail.SetBindGroup(0, r.fadeBG, nil)
		trail.Draw(3, 1, 0, 0)
	}
	if f.particles && r.instanceCount > 0 {
		trail.SetPipeline(r.particlePipeline)
		trail.SetBindGroup(0, r.particleBG, nil)
		trail.SetVertexBuffer(0, r.instanceBuffer, 0, r.instanceBuffer.GetSize())
		trail.Draw(6, r.instanceCount, 0, 0)
	}
	if err := trail.End(); err != nil {
		return fmt.Errorf("trail pass: %w", err)
	}

	blit := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       f.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{A: 1},
		}},
	})
	blit.SetPipeline(r.blitPipeline)
	blit.SetBindGroup(0, r.blitBG, nil)
	blit.Draw(3, 1, 0, 0)
	if err := blit.End(); err != nil {
		return fmt.Errorf("blit pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()
	r.Queue.Submit(cmd)
	r.Surface.Present()
	return nil
}
