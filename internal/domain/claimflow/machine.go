package claimflow

import (
	"fmt"
	"sort"
)

// StateMachine tracks the current state of one claim and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire moves to the configured target state or returns ErrInvalidTransition
	Fire(trigger Trigger) error

	// PermittedTriggers returns the triggers allowed in the current state, sorted
	PermittedTriggers() []Trigger
}

// StateMachineBuilder builds configured state machines
type StateMachineBuilder interface {
	// Configure returns the configuration for the given source state
	Configure(state State) StateConfiguration

	// Build creates a machine starting in the given state
	Build(initialState State) StateMachine
}

// StateConfiguration configures transitions out of one state
type StateConfiguration interface {
	// Permit allows a trigger to move to the target state
	Permit(trigger Trigger, toState State) StateConfiguration
}

type stateConfig struct {
	transitions map[Trigger]State
}

type stateMachineBuilder struct {
	configurations map[State]*stateConfig
}

type stateMachine struct {
	currentState   State
	configurations map[State]*stateConfig
}

// NewBuilder creates an empty builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[State]*stateConfig),
	}
}

// Configure returns the configuration for the given state, creating it on first use
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, exists := b.configurations[state]
	if !exists {
		config = &stateConfig{transitions: make(map[Trigger]State)}
		b.configurations[state] = config
	}
	return config
}

// Build copies the configuration so later Configure calls do not affect built machines
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	configsCopy := make(map[State]*stateConfig, len(b.configurations))
	for state, config := range b.configurations {
		transitions := make(map[Trigger]State, len(config.transitions))
		for trigger, to := range config.transitions {
			transitions[trigger] = to
		}
		configsCopy[state] = &stateConfig{transitions: transitions}
	}

	return &stateMachine{
		currentState:   initialState,
		configurations: configsCopy,
	}
}

// Permit allows a trigger to move to the target state
func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.transitions[trigger] = toState
	return c
}

func (m *stateMachine) State() State {
	return m.currentState
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return false
	}
	_, ok := config.transitions[trigger]
	return ok
}

func (m *stateMachine) Fire(trigger Trigger) error {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return fmt.Errorf("%w: cannot fire trigger %s from state %s (no configuration)", ErrInvalidTransition, trigger, m.currentState)
	}

	to, ok := config.transitions[trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire trigger %s from state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	m.currentState = to
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
