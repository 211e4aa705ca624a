// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/sec"
)

type recordingAdmin struct {
	roles     map[string]sec.Role
	confirmed []string
	err       error
}

func (a *recordingAdmin) ChangeRole(_ context.Context, email string, role sec.Role) error {
	if a.err != nil {
		return a.err
	}
	a.roles[email] = role
	return nil
}

func (a *recordingAdmin) MarkConfirmed(_ context.Context, email string) error {
	if a.err != nil {
		return a.err
	}
	a.confirmed = append(a.confirmed, email)
	return nil
}

type fixture struct {
	admin    *recordingAdmin
	steps    []int
	released int
	env      *environment
}

func newFixture() *fixture {
	f := &fixture{admin: &recordingAdmin{roles: map[string]sec.Role{}}}
	f.env = &environment{
		logger: slog.New(slog.DiscardHandler),
		migrate: func(steps int) error {
			f.steps = append(f.steps, steps)
			return nil
		},
		admin: func(context.Context) (accountAdmin, func(), error) {
			return f.admin, func() { f.released++ }, nil
		},
	}
	return f
}

func execute(env *environment, args ...string) (string, error) {
	root := newRootCommand(env)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

/*
TestMigrateCommands translates subcommands into migration steps.
*/
func TestMigrateCommands(t *testing.T) {
	f := newFixture()

	out, err := execute(f.env, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = execute(f.env, "migrate", "down", "--steps", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "rolled back 2")

	_, err = execute(f.env, "migrate", "down", "--steps", "0")
	assert.Error(t, err)

	assert.Equal(t, []int{0, -2}, f.steps)
}

/*
TestUserCommands changes roles and confirms accounts through the service.
*/
func TestUserCommands(t *testing.T) {
	f := newFixture()

	out, err := execute(f.env, "user", "set-role", "alice@x.com", "Moderator")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@x.com is now moderator")
	assert.Equal(t, sec.RoleModerator, f.admin.roles["alice@x.com"])

	_, err = execute(f.env, "user", "set-role", "alice@x.com", "root")
	assert.Error(t, err)

	out, err = execute(f.env, "user", "confirm", "bob@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "bob@x.com confirmed")
	assert.Equal(t, []string{"bob@x.com"}, f.admin.confirmed)

	_, err = execute(f.env, "user", "confirm")
	assert.Error(t, err)

	assert.Equal(t, 2, f.released)
}

/*
TestUserCommands_ServiceError surfaces failures from the service.
*/
func TestUserCommands_ServiceError(t *testing.T) {
	f := newFixture()
	f.admin.err = errors.New("not found")

	_, err := execute(f.env, "user", "confirm", "ghost@x.com")
	assert.EqualError(t, err, "not found")
	assert.Equal(t, 1, f.released)
}
