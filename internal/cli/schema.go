package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
)

// SchemaCmd outputs machine-readable command tree as JSON
type SchemaCmd struct {
	Command string `arg:"" optional:"" help:"Command path to show schema for (e.g., 'kernels pull')"`
	Hidden  bool   `help:"Include hidden commands and flags"`
}

// SchemaNode represents a node in the command tree
type SchemaNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path,omitempty"`
	Help     string        `json:"help,omitempty"`
	Aliases  []string      `json:"aliases,omitempty"`
	Children []*SchemaNode `json:"commands,omitempty"`
	Flags    []*SchemaFlag `json:"flags,omitempty"`
	Args     []*SchemaArg  `json:"args,omitempty"`
}

// SchemaFlag represents a command flag
type SchemaFlag struct {
	Name     string   `json:"name"`
	Help     string   `json:"help,omitempty"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Default  string   `json:"default,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Short    string   `json:"short,omitempty"`
	Env      string   `json:"env,omitempty"`
}

// SchemaArg represents a positional argument
type SchemaArg struct {
	Name     string `json:"name"`
	Help     string `json:"help,omitempty"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// Run executes the schema command
func (cmd *SchemaCmd) Run(ctx *kong.Context) error {
	target := ctx.Model.Node
	if cmd.Command != "" {
		var err error
		target, err = findNodeByPath(target, cmd.Command)
		if err != nil {
			return usageError(err)
		}
	}

	enc := json.NewEncoder(ctx.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cmd.buildSchemaNode(target))
}

// buildSchemaNode recursively builds schema from Kong node
func (cmd *SchemaCmd) buildSchemaNode(node *kong.Node) *SchemaNode {
	schema := &SchemaNode{
		Name:    node.Name,
		Help:    node.Help,
		Aliases: node.Aliases,
	}
	if node.Type == kong.CommandNode {
		schema.Path = node.FullPath()
	}

	for _, flag := range node.Flags {
		if flag.Name == "help" || (flag.Hidden && !cmd.Hidden) {
			continue
		}

		f := &SchemaFlag{
			Name:     flag.Name,
			Help:     flag.Help,
			Type:     valueType(flag.Value),
			Required: flag.Required,
			Default:  flag.Default,
		}
		if len(flag.Envs) > 0 {
			f.Env = flag.Envs[0]
		}
		if flag.Short != 0 {
			f.Short = string(flag.Short)
		}
		if flag.Enum != "" {
			f.Enum = strings.Split(flag.Enum, ",")
		}
		schema.Flags = append(schema.Flags, f)
	}

	for _, arg := range node.Positional {
		schema.Args = append(schema.Args, &SchemaArg{
			Name:     arg.Name,
			Help:     arg.Help,
			Type:     valueType(arg),
			Required: arg.Required,
		})
	}

	for _, child := range node.Children {
		if child.Hidden && !cmd.Hidden {
			continue
		}
		schema.Children = append(schema.Children, cmd.buildSchemaNode(child))
	}

	return schema
}

func valueType(v *kong.Value) string {
	if v == nil || !v.Target.IsValid() {
		return "string"
	}
	return v.Target.Type().String()
}

// findNodeByPath walks the node tree to find a specific command path
func findNodeByPath(root *kong.Node, path string) (*kong.Node, error) {
	current := root

	for _, part := range strings.Fields(path) {
		var next *kong.Node
		for _, child := range current.Children {
			if child.Name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("command not found: %s", path)
		}
		current = next
	}

	return current, nil
}
