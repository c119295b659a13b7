// Package lighting converts the configured scene lights into shader inputs.
package lighting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glbstage/internal/config"
)

// Directional is a light infinitely far away.
type Directional struct {
	Direction mgl32.Vec3 // unit vector pointing towards the light
	Color     mgl32.Vec3 // linear colour premultiplied by intensity
}

// Rig is the full set of lights used to shade the scene.
type Rig struct {
	Directional []Directional
	Ambient     mgl32.Vec3
	Sky         mgl32.Vec3
	Ground      mgl32.Vec3
}

// FromConfig builds a rig from hex colours and intensities.
func FromConfig(cfg config.LightsConfig) (Rig, error) {
	var r Rig
	if len(cfg.Directional) > config.MaxDirectionalLights {
		return r, fmt.Errorf("lighting: %d directional lights, max %d", len(cfg.Directional), config.MaxDirectionalLights)
	}

	for i, d := range cfg.Directional {
		c, err := color(d.Color, d.Intensity)
		if err != nil {
			return r, fmt.Errorf("lighting: directional %d: %w", i, err)
		}
		r.Directional = append(r.Directional, Directional{
			Direction: DirectionFrom(mgl32.Vec3(d.Position)),
			Color:     c,
		})
	}

	var err error
	if r.Ambient, err = color(cfg.Ambient.Color, cfg.Ambient.Intensity); err != nil {
		return r, fmt.Errorf("lighting: ambient: %w", err)
	}
	if r.Sky, err = color(cfg.Hemisphere.Sky, cfg.Hemisphere.Intensity); err != nil {
		return r, fmt.Errorf("lighting: sky: %w", err)
	}
	if r.Ground, err = color(cfg.Hemisphere.Ground, cfg.Hemisphere.Intensity); err != nil {
		return r, fmt.Errorf("lighting: ground: %w", err)
	}
	return r, nil
}

// DirectionFrom returns the unit direction from the origin towards a light
// placed at position. A light at the origin shines straight down.
func DirectionFrom(position mgl32.Vec3) mgl32.Vec3 {
	if position.Len() < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return position.Normalize()
}

func color(hex string, intensity float32) (mgl32.Vec3, error) {
	c, err := config.ParseColor(hex)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3(c).Mul(intensity), nil
}
