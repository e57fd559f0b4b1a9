package sim

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"safectl-go/linalg"
)

// ParseScenario loads a scenario XML file. Elements override the defaults
// from DefaultScenario, so a file only needs the attributes it changes:
//
//	<scenario name="corridor" dt="0.016667" steps="1000">
//	  <agent start="50,50"/>
//	  <target pos="250,100"/>
//	  <obstacle pos="150,100" radius="30"/>
//	  <sensor sigma="5" seed="1"/>
//	  <safety eps="15" alpha="3.5"/>
//	  <controller kp="1" kd="2" maxaccel="50"/>
//	  <filter qpos="2" qvel="6" rmeas="30" p0="200"/>
//	</scenario>
func ParseScenario(path string) (Scenario, error) {
	sc := DefaultScenario()
	f, err := os.Open(path)
	if err != nil {
		return sc, err
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sc, fmt.Errorf("parse %s: %w", path, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "scenario":
			if v, ok := attrValue(start, "name"); ok {
				sc.Name = v
			}
			floatAttr(start, "dt", &sc.Dt)
			intAttr(start, "steps", &sc.Steps)
		case "agent":
			vecAttr(start, "start", &sc.Start)
		case "target":
			vecAttr(start, "pos", &sc.Target)
		case "obstacle":
			vecAttr(start, "pos", &sc.Obstacle.Center)
			floatAttr(start, "radius", &sc.Obstacle.Radius)
		case "sensor":
			floatAttr(start, "sigma", &sc.NoiseSigma)
			if v, ok := attrValue(start, "seed"); ok {
				if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
					sc.Seed = seed
				}
			}
		case "safety":
			floatAttr(start, "eps", &sc.Eps)
			floatAttr(start, "alpha", &sc.Alpha)
		case "controller":
			floatAttr(start, "kp", &sc.Kp)
			floatAttr(start, "kd", &sc.Kd)
			floatAttr(start, "maxaccel", &sc.MaxAccel)
		case "filter":
			floatAttr(start, "qpos", &sc.Filter.QPos)
			floatAttr(start, "qvel", &sc.Filter.QVel)
			floatAttr(start, "rmeas", &sc.Filter.RMeas)
			floatAttr(start, "p0", &sc.P0Scale)
		}
	}

	if sc.Obstacle.Radius < 0 {
		return sc, fmt.Errorf("parse %s: negative obstacle radius", path)
	}
	if sc.Eps <= 0 {
		return sc, fmt.Errorf("parse %s: eps must be positive", path)
	}
	return sc, nil
}

func attrValue(e xml.StartElement, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func floatAttr(e xml.StartElement, name string, out *float64) {
	if v, ok := attrValue(e, name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*out = f
		}
	}
}

func intAttr(e xml.StartElement, name string, out *int) {
	if v, ok := attrValue(e, name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*out = n
		}
	}
}

// vecAttr parses an "x,y" attribute.
func vecAttr(e xml.StartElement, name string, out *linalg.Vec2) {
	v, ok := attrValue(e, name)
	if !ok {
		return
	}
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return
	}
	*out = linalg.Vec2{X: x, Y: y}
}
