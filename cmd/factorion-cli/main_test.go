package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyCmdPrintsFactorialResult(t *testing.T) {
	cmd := newReplyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"5!"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "120")
}

func TestParseCmdPrintsJobList(t *testing.T) {
	cmd := newParseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"5!"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "base:")
}

func TestVersionCmdPrintsVersion(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "factorion-cli")
}
