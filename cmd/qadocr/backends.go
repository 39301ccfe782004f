package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List OCR backends and why unavailable ones cannot run",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline()
		if err != nil {
			return err
		}

		fmt.Println("Available backends:")
		for _, name := range p.registry.Names() {
			fmt.Printf("  %s\n", name)
		}

		unavailable := p.registry.Unavailable()
		if len(unavailable) == 0 {
			return nil
		}

		names := make([]string, 0, len(unavailable))
		for name := range unavailable {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nUnavailable backends:")
		for _, name := range names {
			fmt.Printf("  %-15s %s\n", name, unavailable[name])
		}
		return nil
	},
}
