package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/deskshell/internal/model"
)

func TestCollisionPolicyValid(t *testing.T) {
	tests := map[string]struct {
		policy model.CollisionPolicy
		exp    bool
	}{
		"overwrite is valid": {policy: model.CollisionOverwrite, exp: true},
		"reject is valid":    {policy: model.CollisionReject, exp: true},
		"rename is valid":    {policy: model.CollisionRename, exp: true},
		"empty is not valid": {policy: "", exp: false},
		"unknown is invalid": {policy: "merge", exp: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.policy.Valid())
		})
	}
}

func TestServerStateIsTerminal(t *testing.T) {
	tests := map[string]struct {
		state model.ServerState
		exp   bool
	}{
		"not started": {state: model.ServerStateNotStarted, exp: false},
		"starting":    {state: model.ServerStateStarting, exp: false},
		"running":     {state: model.ServerStateRunning, exp: false},
		"failed":      {state: model.ServerStateFailed, exp: true},
		"terminated":  {state: model.ServerStateTerminated, exp: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.state.IsTerminal())
		})
	}
}
