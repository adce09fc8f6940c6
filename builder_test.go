package fsmx_test

import (
	"reflect"
	"testing"

	. "github.com/comalice/fsmx"
)

func sumInts(ext int, updates []int) (int, error) {
	for _, u := range updates {
		ext += u
	}
	return ext, nil
}

func TestBuilderTrafficLight(t *testing.T) {
	b := NewBuilder[int, int, string]().
		Initial("green").
		UpdateState(sumInts).
		CheckContracts()

	b.State("green").On("timer", "yellow", nil)
	b.State("yellow").On("timer", "red", nil)
	b.State("red").On("timer", "green", nil)

	m, err := b.Machine()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Start(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"yellow", "red", "green", "yellow"} {
		if _, err := m.Send(NewEvent("timer", nil)); err != nil {
			t.Fatal(err)
		}
		if m.Current() != want {
			t.Errorf("Current() = %s, want %s", m.Current(), want)
		}
	}
}

func TestBuilderHierarchy(t *testing.T) {
	b := NewBuilder[int, int, string]().Initial("idle").UpdateState(sumInts)
	b.State("idle").On("start", "running", nil)
	running := b.State("running").Initial("fast", nil).On("stop", "idle", nil)
	running.State("fast").On("toggle", "slow", nil)
	b.State("running.slow").On("toggle", "fast", nil)
	b.State("idle").On("resume", "H(running)", nil)

	def, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	wantStates := []State{
		Atomic("idle"),
		Compound("running", Atomic("fast"), Atomic("slow")),
	}
	if !reflect.DeepEqual(def.States, wantStates) {
		t.Errorf("States = %+v, want %+v", def.States, wantStates)
	}
	if want := []string{"start", "stop", "toggle", "resume"}; !reflect.DeepEqual(def.Events, want) {
		t.Errorf("Events = %v, want %v", def.Events, want)
	}
	if r := CheckContracts(def); !r.Fulfilled {
		t.Fatalf("built definition rejected: %v", r.Err())
	}

	m, err := CreateStateMachine(def)
	if err != nil {
		t.Fatal(err)
	}
	m.Start()
	for _, ev := range []string{"start", "toggle", "stop", "resume"} {
		m.Send(NewEvent(ev, nil))
	}
	if m.Current() != "slow" {
		t.Errorf("history did not restore slow, got %s", m.Current())
	}
}

func TestBuilderMergesGuardsIntoOneRow(t *testing.T) {
	big := func(_ int, data any, _ *Settings[int, int]) bool { return data.(int) > 10 }
	b := NewBuilder[int, int, string]().Initial("A").UpdateState(sumInts)
	b.State("A").
		OnIf("n", "B", big, nil).
		On("n", "C", nil)
	b.State("B")
	b.State("C")

	def, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(def.Transitions) != 1 || len(def.Transitions[0].Guards) != 2 {
		t.Fatalf("expected one row with two guards, got %+v", def.Transitions)
	}

	m, _ := CreateStateMachine(def)
	m.Start()
	m.Send(NewEvent("n", 3))
	if m.Current() != "C" {
		t.Errorf("Current() = %s, want C", m.Current())
	}
}

func TestBuilderAlways(t *testing.T) {
	b := NewBuilder[int, int, string]().Initial("A").UpdateState(sumInts).Extra("limit", 2)
	inc := func(int, any, *Settings[int, int]) (ActionResult[int, string], error) {
		return ActionResult[int, string]{Updates: []int{1}}, nil
	}
	reached := func(ext int, _ any, s *Settings[int, int]) bool { return ext >= s.Extra["limit"].(int) }
	b.State("A").On("inc", "B", inc)
	b.State("B").Always("done", reached, nil).Always("A", nil, nil)
	b.State("done")

	m, err := b.CheckContracts().Machine()
	if err != nil {
		t.Fatal(err)
	}
	m.Start()
	m.Send(NewEvent("inc", nil))
	if m.Current() != "A" {
		t.Fatalf("Current() = %s, want A", m.Current())
	}
	m.Send(NewEvent("inc", nil))
	if m.Current() != "done" {
		t.Errorf("Current() = %s, want done", m.Current())
	}
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder[int, int, string])
	}{
		{"empty segment", func(b *Builder[int, int, string]) { b.State("a..b") }},
		{"reparent", func(b *Builder[int, int, string]) {
			b.State("p.x")
			b.State("q.x")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder[int, int, string]()
			tt.build(b)
			if _, err := b.Build(); err == nil {
				t.Error("expected builder error")
			}
		})
	}
}
