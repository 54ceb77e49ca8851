package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		assertions func([]int, error)
	}{
		{
			name: "integers",
			args: []string{"1", "2", "-3", "40"},
			assertions: func(items []int, err error) {
				require.NoError(t, err)
				require.Equal(t, []int{1, 2, -3, 40}, items)
			},
		},
		{
			name: "not an integer",
			args: []string{"1", "two"},
			assertions: func(_ []int, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), `"two" is not an integer`)
			},
		},
		{
			name: "sentinel",
			args: []string{"1", "-1"},
			assertions: func(_ []int, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "dqueue close")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.assertions(parseItems(testCase.args))
		})
	}
}

func TestFormatHead(t *testing.T) {
	require.Equal(t, "1 2 <sentinel>", formatHead([]int{1, 2, -1}))
	require.Equal(t, "", formatHead(nil))
}

func TestValidateOutputFormat(t *testing.T) {
	require.NoError(t, validateOutputFormat("table"))
	require.NoError(t, validateOutputFormat("JSON"))
	err := validateOutputFormat("yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), `--output "yaml" is not supported`)
}
