package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a value expression against seeded scopes",
	Long: `Evaluates a value expression (e.g. 'user.name' or 'price * 1.2') against
scopes seeded from a YAML file. The seed file maps scope names to
name/value tables:

    application:
      rate: 1.2
    session:
      user:
        name: Ada`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seedPath, _ := cmd.Flags().GetString("seed")
		kindName, _ := cmd.Flags().GetString("kind")
		explain, _ := cmd.Flags().GetBool("explain")

		kind, err := parseKind(kindName)
		if err != nil {
			return err
		}

		app := arbor.New()
		ctx := app.NewContext()

		if seedPath != "" {
			if err := seedScopes(ctx, seedPath); err != nil {
				return err
			}
		}

		val, err := arbor.ResolveBean(ctx, args[0], kind)
		if err != nil {
			return fmt.Errorf("eval %q: %w", args[0], err)
		}

		out, err := json.Marshal(val)
		if err != nil {
			return err
		}

		if explain {
			render := tui.NewRenderer()
			md := fmt.Sprintf("## %s\n\nResult (`%T`):\n\n```json\n%s\n```\n",
				args[0], val, out)
			text, err := render(md)
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		}

		fmt.Println(string(out))
		return nil
	},
}

func seedScopes(ctx *arbor.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed map[string]map[string]any
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for scopeName, values := range seed {
		scope := domain.Scope(scopeName)
		if !scope.Valid() {
			return fmt.Errorf("seed file: unknown scope %q", scopeName)
		}
		store := ctx.Scope(scope)
		for name, value := range values {
			if err := store.Set(context.Background(), name, value); err != nil {
				return fmt.Errorf("seed %s.%s: %w", scopeName, name, err)
			}
		}
	}
	return nil
}

func parseKind(name string) (reflect.Kind, error) {
	switch name {
	case "":
		return reflect.Invalid, nil
	case "string":
		return reflect.String, nil
	case "int":
		return reflect.Int, nil
	case "float":
		return reflect.Float64, nil
	case "bool":
		return reflect.Bool, nil
	}
	return reflect.Invalid, fmt.Errorf("unknown kind %q (string, int, float, bool)", name)
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringP("seed", "s", "", "YAML file seeding the scopes")
	evalCmd.Flags().StringP("kind", "k", "", "Expected result kind: string, int, float, bool")
	evalCmd.Flags().Bool("explain", false, "Render the result as markdown")
}
