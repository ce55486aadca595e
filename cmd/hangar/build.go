package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hangarlabs/hangar/pkg/pipeline"
)

func buildCommand(root string, out string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("source tree %s is not readable: %w", root, err)
	}

	return pipeline.New(root, out).Run(context.Background())
}
