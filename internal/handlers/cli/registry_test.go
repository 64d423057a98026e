package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gabapcia/hookwatch/internal/hookeval"
	"github.com/gabapcia/hookwatch/internal/hookregistry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type hookRegistryMock struct {
	mock.Mock
}

var _ hookregistry.Service = (*hookRegistryMock)(nil)

func (m *hookRegistryMock) Register(ctx context.Context, spec hookeval.Specification) (hookeval.Specification, error) {
	args := m.Called(ctx, spec)
	return args.Get(0).(hookeval.Specification), args.Error(1)
}

func (m *hookRegistryMock) Deregister(ctx context.Context, hookUUID string) error {
	args := m.Called(ctx, hookUUID)
	return args.Error(0)
}

func (m *hookRegistryMock) List(ctx context.Context) ([]hookeval.Specification, error) {
	args := m.Called(ctx)
	if hooks := args.Get(0); hooks != nil {
		return hooks.([]hookeval.Specification), args.Error(1)
	}
	return nil, args.Error(1)
}

func writeSpecFile(t *testing.T, spec hookeval.Specification) string {
	t.Helper()

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hook.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRegisterHookCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		cmd := registerHookCommand(new(hookRegistryMock))

		assert.Equal(t, "register", cmd.Name)
		require.Len(t, cmd.Flags, 1)

		fileFlag := cmd.Flags[0].(*cli.StringFlag)
		assert.Equal(t, "file", fileFlag.Name)
		assert.True(t, fileFlag.Required)
	})

	t.Run("should register the specification from the file", func(t *testing.T) {
		spec := hookeval.Specification{
			Predicate: hookeval.Predicate{Kind: hookeval.PredicateTxID, TxID: "0xabc"},
			Action:    hookeval.Action{Type: hookeval.ActionNoop},
		}
		registered := spec
		registered.UUID = "9c5ea51e-9f55-4b48-9a34-1b2ca7e4b51d"

		registry := new(hookRegistryMock)
		registry.On("Register", mock.Anything, spec).Return(registered, nil)

		app := &cli.Command{Commands: []*cli.Command{registerHookCommand(registry)}}

		err := app.Run(t.Context(), []string{"test", "register", "--file", writeSpecFile(t, spec)})
		assert.NoError(t, err)

		registry.AssertExpectations(t)
	})

	t.Run("should fail when the file flag is missing", func(t *testing.T) {
		app := &cli.Command{Commands: []*cli.Command{registerHookCommand(new(hookRegistryMock))}}

		err := app.Run(t.Context(), []string{"test", "register"})
		assert.Error(t, err)
	})

	t.Run("should fail when the file does not exist", func(t *testing.T) {
		app := &cli.Command{Commands: []*cli.Command{registerHookCommand(new(hookRegistryMock))}}

		err := app.Run(t.Context(), []string{"test", "register", "--file", "/nonexistent/hook.json"})
		assert.Error(t, err)
	})

	t.Run("should fail when the file is not valid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hook.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

		app := &cli.Command{Commands: []*cli.Command{registerHookCommand(new(hookRegistryMock))}}

		err := app.Run(t.Context(), []string{"test", "register", "--file", path})
		assert.Error(t, err)
	})

	t.Run("should return error when the registry rejects the spec", func(t *testing.T) {
		spec := hookeval.Specification{Predicate: hookeval.Predicate{Kind: "mystery"}}

		registry := new(hookRegistryMock)
		registry.On("Register", mock.Anything, spec).
			Return(hookeval.Specification{}, hookregistry.ErrInvalidSpecification)

		app := &cli.Command{Commands: []*cli.Command{registerHookCommand(registry)}}

		err := app.Run(t.Context(), []string{"test", "register", "--file", writeSpecFile(t, spec)})
		assert.ErrorIs(t, err, hookregistry.ErrInvalidSpecification)
	})
}

func TestDeregisterHookCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		cmd := deregisterHookCommand(new(hookRegistryMock))

		assert.Equal(t, "deregister", cmd.Name)
		require.Len(t, cmd.Flags, 1)

		uuidFlag := cmd.Flags[0].(*cli.StringFlag)
		assert.Equal(t, "uuid", uuidFlag.Name)
		assert.True(t, uuidFlag.Required)
	})

	t.Run("should deregister by uuid", func(t *testing.T) {
		hookUUID := "9c5ea51e-9f55-4b48-9a34-1b2ca7e4b51d"

		registry := new(hookRegistryMock)
		registry.On("Deregister", mock.Anything, hookUUID).Return(nil)

		app := &cli.Command{Commands: []*cli.Command{deregisterHookCommand(registry)}}

		err := app.Run(t.Context(), []string{"test", "deregister", "--uuid", hookUUID})
		assert.NoError(t, err)

		registry.AssertExpectations(t)
	})

	t.Run("should return error when the service fails", func(t *testing.T) {
		serviceErr := errors.New("storage unavailable")

		registry := new(hookRegistryMock)
		registry.On("Deregister", mock.Anything, mock.Anything).Return(serviceErr)

		app := &cli.Command{Commands: []*cli.Command{deregisterHookCommand(registry)}}

		err := app.Run(t.Context(), []string{"test", "deregister", "--uuid", "abc"})
		assert.ErrorIs(t, err, serviceErr)
	})

	t.Run("should fail when the uuid flag is missing", func(t *testing.T) {
		app := &cli.Command{Commands: []*cli.Command{deregisterHookCommand(new(hookRegistryMock))}}

		err := app.Run(t.Context(), []string{"test", "deregister"})
		assert.Error(t, err)
	})
}

func TestListHooksCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		cmd := listHooksCommand(new(hookRegistryMock))

		assert.Equal(t, "list", cmd.Name)
		assert.Empty(t, cmd.Flags)
	})

	t.Run("should list every registered hook", func(t *testing.T) {
		hooks := []hookeval.Specification{
			{UUID: "hook-1", Predicate: hookeval.Predicate{Kind: hookeval.PredicateTxID, TxID: "0xabc"}},
			{UUID: "hook-2", Predicate: hookeval.Predicate{Kind: hookeval.PredicateValueTransfer}},
		}

		registry := new(hookRegistryMock)
		registry.On("List", mock.Anything).Return(hooks, nil)

		app := &cli.Command{Commands: []*cli.Command{listHooksCommand(registry)}}

		err := app.Run(t.Context(), []string{"test", "list"})
		assert.NoError(t, err)

		registry.AssertExpectations(t)
	})

	t.Run("should return error when the service fails", func(t *testing.T) {
		serviceErr := errors.New("storage unavailable")

		registry := new(hookRegistryMock)
		registry.On("List", mock.Anything).Return(nil, serviceErr)

		app := &cli.Command{Commands: []*cli.Command{listHooksCommand(registry)}}

		err := app.Run(t.Context(), []string{"test", "list"})
		assert.ErrorIs(t, err, serviceErr)
	})
}
