package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/notedesk/internal/config"
)

const header = "# notedesk configuration example\n# Copy this file to " + config.DefaultConfigFileName + " and customize as needed\n\n"

func main() {
	outputFile := "notedesk.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	output, err := generate(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating config: %v\n", err)
		os.Exit(1)
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := writeAtomic(outputFile, []byte(output)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}

// generate renders the defaults as TOML for a .toml output and YAML otherwise.
func generate(outputFile string) (string, error) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	var buf bytes.Buffer
	buf.WriteString(header)

	if strings.EqualFold(filepath.Ext(outputFile), ".toml") {
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	buf.Write(data)
	return buf.String(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".notedesk-config-*")
	if err != nil {
		return fmt.Errorf(config.ErrCreateTempFileFmt, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf(config.ErrWriteConfigContentFmt, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
