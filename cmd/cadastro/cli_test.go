package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const input = `nome,email,cpf,celular,idade,data_nascimento,data_cadastro
Maria Souza,maria.souza@gmail.com,123.456.789-00,(11) 9888-77777,30,01/01/1990,15/03/2023
João Lima,joao.lima@gmail.com,12345678900,(11) 9888-77777,abc,01/01/1990,15/03/2023
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CADASTRO_ADDR", "")
	t.Setenv("CADASTRO_CONFIG", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cadastros.csv")
	outPath := filepath.Join(dir, "resultados.txt")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))

	stdout, err := run(t, "validate", in, "-o", outPath)
	require.NoError(t, err)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, string(written), stdout)

	lines := strings.Split(strings.TrimSuffix(string(written), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "status: valid")
	assert.Contains(t, lines[1], "status: invalid")
	assert.Contains(t, lines[1], "CPF inválido: 12345678900")
	assert.Contains(t, lines[1], "Idade inválida: abc")
}

func TestValidateCommand_JSONQuiet(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cadastros.csv")
	outPath := filepath.Join(dir, "resultados.jsonl")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))

	stdout, err := run(t, "validate", in, "-o", outPath, "--format", "json", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"status":"invalid"`)
}

func TestValidateCommand_DefaultOutputFollowsFormat(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cadastros.csv")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))
	t.Chdir(dir)

	_, err := run(t, "validate", in, "--format", "json", "--quiet")
	require.NoError(t, err)
	written, err := os.ReadFile(filepath.Join(dir, "resultados.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(written), `"status":"valid"`)

	_, err = run(t, "validate", in, "--format", "yaml", "--quiet")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "resultados.yaml"))

	_, err = run(t, "validate", in, "--quiet")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "resultados.txt"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestValidateCommand_EchoError(t *testing.T) {
	t.Setenv("CADASTRO_ADDR", "")
	t.Setenv("CADASTRO_CONFIG", "")
	dir := t.TempDir()
	in := filepath.Join(dir, "cadastros.csv")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(failingWriter{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", in, "-o", filepath.Join(dir, "out.txt")})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout closed")
}

func TestValidateCommand_NoHeader(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cadastros.csv")
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))

	stdout, err := run(t, "validate", in, "-o", outPath, "--no-header")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(stdout, "\n"))
}

func TestValidateCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "validate", filepath.Join(dir, "missing.csv"), "-o", filepath.Join(dir, "out.txt"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("header\na,b,c\n"), 0o644))
	_, err = run(t, "validate", bad, "-o", filepath.Join(dir, "out.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	good := filepath.Join(dir, "good.csv")
	require.NoError(t, os.WriteFile(good, []byte(input), 0o644))
	_, err = run(t, "validate", good, "--format", "xml")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	stdout, err := run(t, "check",
		"--name", "Ana Silva",
		"--email", "Ana.Silva@gmail.com",
		"--cpf", "123.456.789-00",
		"--phone", "(11) 9888-77777",
		"--age", "30",
		"--birth_date", "01/01/1990",
		"--registration_date", "15/03/2023",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "status: valid")
}

func TestVersionCommand(t *testing.T) {
	stdout, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cadastro dev\n", stdout)
}
