package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jmig/internal/recipe"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List the recipes that would run with the current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine()
		if err != nil {
			logger.Fatal("Failed to initialize migration engine", zap.Error(err))
		}
		printRecipes(os.Stdout, engine.Recipes())
	},
}

var (
	nameStyle  = color.New(color.FgYellow, color.Bold)
	labelStyle = color.New(color.FgHiBlue)
)

func printRecipes(out io.Writer, defs []recipe.Definition) {
	if len(defs) == 0 {
		fmt.Fprintln(out, "no recipes enabled")
		return
	}
	for _, def := range defs {
		fmt.Fprintln(out, nameStyle.Sprint(def.Name))
		if def.Description != "" {
			fmt.Fprintf(out, "  %s\n", def.Description)
		}
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Sprint("legacy:     "), def.Legacy)
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Sprint("replacement:"), def.Replacement)

		arities := make([]int, 0, len(def.Overloads))
		for a := range def.Overloads {
			arities = append(arities, a)
		}
		sort.Ints(arities)
		for _, a := range arities {
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Sprintf("%d args:    ", a), def.Overloads[a])
		}
		for _, f := range def.MatcherFactories {
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Sprint("matchers:   "), f)
		}
	}
}
