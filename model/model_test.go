package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/keystack"
	"github.com/calvinalkan/keystack/model"
)

func Test_Model_Starts_Empty(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()

	assert.Equal(t, 0, stackModel.Len(), "fresh model should have no entries")
	assert.Nil(t, stackModel.Entries, "fresh model should have nil Entries")
	assert.Nil(t, stackModel.Keys(), "fresh model should have no keys")
}

func Test_Model_Push_Stacks_Entries_Globally_And_Per_Key(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()
	stackModel.Push("a", 1)
	stackModel.Push("b", 2)
	stackModel.Push("a", 3)

	require.Equal(t, 3, stackModel.Len(), "Len should count every entry")
	assert.Equal(t, 2, stackModel.Count("a"), "Count should track per-key entries")
	assert.Equal(t, 1, stackModel.Count("b"), "Count should track per-key entries")

	key, value, err := stackModel.Top()
	require.NoError(t, err, "Top should succeed on non-empty model")
	assert.Equal(t, "a", key, "global top should be the newest push")
	assert.Equal(t, 3, value, "global top should be the newest push")

	value, err = stackModel.TopKey("b")
	require.NoError(t, err, "TopKey should succeed for a live key")
	assert.Equal(t, 2, value, "per-key top should be the newest push of that key")
}

func Test_Model_Returns_ErrEmpty_When_No_Entries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		run  func(*model.StackModel[string, int]) error
	}{
		{
			name: "Pop",
			run: func(m *model.StackModel[string, int]) error {
				return m.Pop()
			},
		},
		{
			name: "PopKey",
			run: func(m *model.StackModel[string, int]) error {
				return m.PopKey("a")
			},
		},
		{
			name: "Top",
			run: func(m *model.StackModel[string, int]) error {
				_, _, err := m.Top()

				return err
			},
		},
		{
			name: "TopKey",
			run: func(m *model.StackModel[string, int]) error {
				_, err := m.TopKey("a")

				return err
			},
		},
		{
			name: "SetTop",
			run: func(m *model.StackModel[string, int]) error {
				return m.SetTop(9)
			},
		},
		{
			name: "SetTopKey",
			run: func(m *model.StackModel[string, int]) error {
				return m.SetTopKey("a", 9)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			stackModel := model.New[string, int]()

			err := testCase.run(stackModel)
			require.ErrorIs(t, err, keystack.ErrEmpty, "operation should fail on empty model")
			assert.Equal(t, 0, stackModel.Len(), "failed operation should not change state")
		})
	}
}

func Test_Model_Returns_ErrKeyNotFound_When_Key_Has_No_Entries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		run  func(*model.StackModel[string, int]) error
	}{
		{
			name: "PopKey",
			run: func(m *model.StackModel[string, int]) error {
				return m.PopKey("missing")
			},
		},
		{
			name: "TopKey",
			run: func(m *model.StackModel[string, int]) error {
				_, err := m.TopKey("missing")

				return err
			},
		},
		{
			name: "SetTopKey",
			run: func(m *model.StackModel[string, int]) error {
				return m.SetTopKey("missing", 9)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			stackModel := model.New[string, int]()
			stackModel.Push("a", 1)

			err := testCase.run(stackModel)
			require.ErrorIs(t, err, keystack.ErrKeyNotFound, "operation should fail for an absent key")
			assert.Equal(t, 1, stackModel.Len(), "failed operation should not change state")
		})
	}
}

func Test_Model_PopKey_Removes_Newest_Entry_Of_That_Key_Only(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()
	stackModel.Push("a", 1)
	stackModel.Push("b", 2)
	stackModel.Push("a", 3)

	require.NoError(t, stackModel.PopKey("a"), "PopKey should succeed for a live key")

	expected := []model.EntryRecord[string, int]{
		{Key: "a", Value: 1},
		{Key: "b", Value: 2},
	}

	diff := cmp.Diff(expected, stackModel.Entries)
	assert.Empty(t, diff, "PopKey should remove only that key's newest entry")
}

func Test_Model_PopKey_Makes_Exhausted_Key_Behave_Like_Never_Pushed(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()
	stackModel.Push("a", 1)
	stackModel.Push("b", 2)

	require.NoError(t, stackModel.PopKey("b"), "PopKey should succeed for a live key")

	assert.Equal(t, 0, stackModel.Count("b"), "exhausted key should count zero")
	assert.Equal(t, []string{"a"}, stackModel.Keys(), "exhausted key should leave the key set")

	err := stackModel.PopKey("b")
	require.ErrorIs(t, err, keystack.ErrKeyNotFound, "exhausted key should act like a never-pushed key")
}

func Test_Model_SetTop_Overwrites_Newest_Value(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()
	stackModel.Push("a", 1)
	stackModel.Push("b", 2)

	require.NoError(t, stackModel.SetTop(20), "SetTop should succeed on non-empty model")
	require.NoError(t, stackModel.SetTopKey("a", 10), "SetTopKey should succeed for a live key")

	expected := []model.EntryRecord[string, int]{
		{Key: "a", Value: 10},
		{Key: "b", Value: 20},
	}

	diff := cmp.Diff(expected, stackModel.Entries)
	assert.Empty(t, diff, "set operations should overwrite in place")
}

func Test_Model_Keys_Returns_Distinct_Keys_Ascending(t *testing.T) {
	t.Parallel()

	stackModel := model.New[int, string]()
	stackModel.Push(30, "x")
	stackModel.Push(10, "y")
	stackModel.Push(20, "z")
	stackModel.Push(10, "w")

	assert.Equal(t, []int{10, 20, 30}, stackModel.Keys(), "keys should be distinct and ascending")
}

func Test_Model_Clear_Removes_Everything(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()
	stackModel.Push("a", 1)
	stackModel.Push("b", 2)

	stackModel.Clear()

	assert.Equal(t, 0, stackModel.Len(), "Clear should remove every entry")
	assert.Nil(t, stackModel.Keys(), "Clear should empty the key set")

	err := stackModel.Pop()
	require.ErrorIs(t, err, keystack.ErrEmpty, "cleared model should behave like a fresh one")
}

func Test_Model_Clone_Returns_Nil_When_Model_Is_Nil(t *testing.T) {
	t.Parallel()

	var stackModel *model.StackModel[string, int]

	assert.Nil(t, stackModel.Clone(), "clone of a nil model should be nil")
}

// Test_Model_Clone_Preserves_Nil_Entries verifies that Clone() keeps the
// nil vs empty slice distinction. This matters because:
// 1. New() returns Entries: nil
// 2. cmp.Diff treats nil and []T{} as different
// 3. Clone promises "exact same state" for metamorphic test comparisons.
func Test_Model_Clone_Preserves_Nil_Entries(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()
	require.Nil(t, stackModel.Entries, "precondition: fresh model should have nil Entries")

	clone := stackModel.Clone()
	require.NotNil(t, clone, "clone should not be nil")

	diff := cmp.Diff(stackModel, clone)
	assert.Empty(t, diff, "clone should be identical to original (including nil Entries)")
	assert.Nil(t, clone.Entries, "clone should preserve nil Entries")
}

func Test_Model_Clone_Is_Independent_Of_Original(t *testing.T) {
	t.Parallel()

	stackModel := model.New[string, int]()
	stackModel.Push("a", 1)
	stackModel.Push("b", 2)

	clone := stackModel.Clone()
	require.NotNil(t, clone, "clone should not be nil")

	diff := cmp.Diff(stackModel, clone)
	require.Empty(t, diff, "clone mismatch")

	clone.Push("c", 3)
	require.NoError(t, clone.SetTopKey("a", 99), "SetTopKey should succeed on the clone")

	assert.Equal(t, 2, stackModel.Len(), "clone mutation should not affect original")

	value, err := stackModel.TopKey("a")
	require.NoError(t, err, "TopKey should succeed on the original")
	assert.Equal(t, 1, value, "clone mutation should not affect original values")
}
