/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
	"goarrg.com/asset"
	"goarrg.com/debug"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg"
	"goarrg.com/rhi/gsg/native/opengl"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

var flags flag.FlagSet

func init() {
	// GL contexts are bound to the thread that made them current.
	runtime.LockOSThread()
}

func main() {
	debug.SetLevel(debug.LogLevelWarn)

	flags.Usage = help
	flags.Init("", flag.ExitOnError)

	v := flags.Bool("v", false, "Verbose - Print high level tasks")
	vv := flags.Bool("vv", false, "Very Verbose - Print everything")

	dir := flags.String("dir", ".", "Sets the directory for the purposes of -config resolution.")
	config := flags.String("config", "", "TOML file overriding the default gsg.Config.")
	frame := flags.Bool("frame", false, "Render and present one cleared frame after the report.")
	screenshot := flags.String("screenshot", "", "PNG file to save the cleared frame to, implies -frame.")
	indent := flags.Bool("indent", true, "Indent the JSON report.")

	err := flags.Parse(os.Args[1:])
	if err != nil {
		panic(err)
	}

	if *v {
		debug.SetLevel(debug.LogLevelInfo)
	} else if *vv {
		debug.SetLevel(debug.LogLevelVerbose)
	}

	if len(flags.Args()) > 0 {
		debug.EPrintf("gsginfo takes no positional arguments.")
		help()
		os.Exit(2)
	}

	fsys := asset.DirFS(*dir)
	cfg := gsg.DefaultConfig()
	if *config != "" {
		f, err := fsys.Open(*config)
		if err != nil {
			panic(debug.ErrorWrapf(err, "Failed to open config"))
		}
		cfg, err = gsg.LoadConfig(f)
		f.Close()
		if err != nil {
			panic(err)
		}
	}

	if err := glfw.Init(); err != nil {
		panic(debug.ErrorWrapf(err, "Failed to init glfw"))
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.StencilBits, 8)

	window, err := glfw.CreateWindow(64, 64, "gsginfo", nil, nil)
	if err != nil {
		panic(debug.ErrorWrapf(err, "Failed to create window"))
	}
	defer window.Destroy()
	window.MakeContextCurrent()

	debug.IPrintf("Creating device")
	device, err := opengl.New(glfw.GetProcAddress, window)
	if err != nil {
		panic(err)
	}

	g := gsg.New("gsginfo", device, &resource.ImageLoader{FS: fsys}, cfg)
	defer g.Close()

	if err := g.Reset(); err != nil {
		panic(err)
	}

	caps := g.Capabilities()
	var report []byte
	if *indent {
		report, err = json.MarshalIndent(&caps, "", "\t")
	} else {
		report, err = json.Marshal(&caps)
	}
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(os.Stdout, "%s\n", report)

	if *frame || *screenshot != "" {
		if err := clearFrame(g, window, *screenshot); err != nil {
			panic(err)
		}
	}
}

func clearFrame(g *gsg.GraphicsStateGuardian, window *glfw.Window, screenshot string) error {
	ok, err := g.BeginFrame()
	if err != nil || !ok {
		return err
	}
	w, h := window.GetFramebufferSize()
	full := gmath.Recti32{W: int32(w), H: int32(h)}
	g.PrepareDisplayRegion(full, full)

	if ok, err := g.BeginScene(); err != nil || !ok {
		return errors.Join(err, g.EndFrame())
	}
	g.Clear(gsg.ClearRequest{
		Color:      true,
		ColorValue: state.Vec4{0, 0, 0, 1},
		Depth:      true,
		DepthValue: 1,
	})
	if screenshot != "" {
		if err := saveFrame(g, screenshot); err != nil {
			return errors.Join(err, g.EndScene(), g.EndFrame())
		}
	}
	if err := g.EndScene(); err != nil {
		return err
	}
	if err := g.EndFrame(); err != nil {
		return err
	}
	g.Finish()
	debug.IPrintf("Presented frame %d", g.FrameNumber())
	return nil
}

func saveFrame(g *gsg.GraphicsStateGuardian, file string) error {
	img, ok := g.CopyPixels(gmath.Recti32{})
	if !ok {
		return debug.Errorf("Failed to read back frame %d", g.FrameNumber())
	}
	f, err := os.Create(file)
	if err != nil {
		return debug.ErrorWrapf(err, "Failed to create screenshot")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return debug.ErrorWrapf(err, "Failed to encode screenshot")
	}
	debug.IPrintf("Saved %s", file)
	return f.Close()
}

func help() {
	fmt.Fprintf(os.Stderr, "gsginfo opens a hidden OpenGL 2.1 window, resets a gsg.GraphicsStateGuardian on it\n"+
		"and prints the negotiated gsg.Capabilities as JSON.\n"+
		"\n")
	args := ""
	flags.VisitAll(func(f *flag.Flag) {
		n, u := flag.UnquoteUsage(f)
		if f.DefValue != "" {
			u += "\n\nDefaults to \"" + f.DefValue + "\"."
		}
		args += "\t-" + f.Name + " " + n + "\n\t\t" + strings.ReplaceAll(strings.TrimSpace(u), "\n", "\n\t\t") + "\n"
	})
	fmt.Fprintf(os.Stderr, "Usage:\n\t%s [arguments]\n\nArguments:\n%s", filepath.Base(os.Args[0]), args)
}
