// Package actor cycles control between the playable actors. Only the
// current actor is active in the scene and tracked by the sensor.
package actor

import (
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/sensor"
)

type Scene interface {
	SetActive(id ecs.EntityID, active bool)
}

type Tracker interface {
	SetEnabled(a *sensor.Actor, on bool)
}

// Actor is one controllable character.
type Actor struct {
	Name   string
	Entity ecs.EntityID
	Sensor *sensor.Actor
}

type Switcher struct {
	scene   Scene
	tracker Tracker
	actors  []Actor
	current int
	log     *zap.Logger
}

// NewSwitcher disables every actor, then activates the first.
func NewSwitcher(scene Scene, tracker Tracker, actors []Actor, log *zap.Logger) *Switcher {
	s := &Switcher{scene: scene, tracker: tracker, actors: actors, log: log}
	for _, a := range actors {
		s.set(a, false)
	}
	if len(actors) > 0 {
		s.set(actors[0], true)
	}
	return s
}

// Current returns the controlled actor's entity, NoEntity when empty.
func (s *Switcher) Current() ecs.EntityID {
	if len(s.actors) == 0 {
		return ecs.NoEntity
	}
	return s.actors[s.current].Entity
}

func (s *Switcher) CurrentName() string {
	if len(s.actors) == 0 {
		return ""
	}
	return s.actors[s.current].Name
}

func (s *Switcher) Len() int { return len(s.actors) }

// Next hands control to the following actor, wrapping around.
func (s *Switcher) Next() {
	if len(s.actors) < 2 {
		return
	}
	s.set(s.actors[s.current], false)
	s.current = (s.current + 1) % len(s.actors)
	s.set(s.actors[s.current], true)
	s.log.Info("actor switched", zap.String("actor", s.actors[s.current].Name))
}

func (s *Switcher) set(a Actor, on bool) {
	s.scene.SetActive(a.Entity, on)
	if a.Sensor != nil {
		s.tracker.SetEnabled(a.Sensor, on)
	}
}
