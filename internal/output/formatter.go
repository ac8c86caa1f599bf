package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
)

// Formatter is the interface for output formatting
type Formatter interface {
	Print(data any) error
	PrintList(items any, columns []Column) error
	PrintMessage(msg string)
	PrintError(err error)
	PrintHint(msg string)
}

// Column defines a column for table/list output
type Column struct {
	Name  string // Display name
	Key   string // Struct field name or map key
	Width int    // Width for rich mode (0 = auto)
}

// New creates a formatter for the specified mode writing to stdout/stderr
func New(mode string) Formatter {
	return NewWithWriters(mode, os.Stdout, os.Stderr)
}

// NewWithWriters creates a formatter writing data to out and diagnostics to errOut
func NewWithWriters(mode string, out, errOut io.Writer) Formatter {
	switch mode {
	case "json":
		return &jsonFormatter{out: out, errOut: errOut}
	case "rich":
		return &richFormatter{
			plainFormatter: plainFormatter{out: out, errOut: errOut},
			profile:        termenv.ColorProfile(),
		}
	default:
		return &plainFormatter{out: out, errOut: errOut}
	}
}

// jsonFormatter outputs JSON to stdout
type jsonFormatter struct {
	out, errOut io.Writer
}

func (f *jsonFormatter) Print(data any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) PrintList(items any, columns []Column) error {
	count := 0
	if v := indirect(reflect.ValueOf(items)); v.Kind() == reflect.Slice {
		count = v.Len()
	}

	return f.Print(map[string]any{
		"data":  items,
		"count": count,
	})
}

// PrintMessage goes to stderr so stdout stays machine-readable
func (f *jsonFormatter) PrintMessage(msg string) {
	fmt.Fprintln(f.errOut, msg)
}

func (f *jsonFormatter) PrintError(err error) {
	enc := json.NewEncoder(f.errOut)
	enc.SetIndent("", "  ")
	enc.Encode(map[string]string{"error": err.Error()})
}

// Hints are not emitted in JSON mode
func (f *jsonFormatter) PrintHint(msg string) {}

// plainFormatter outputs tab-separated values
type plainFormatter struct {
	out, errOut io.Writer
}

func (f *plainFormatter) Print(data any) error {
	v := indirect(reflect.ValueOf(data))

	if v.Kind() == reflect.Struct {
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			fmt.Fprintf(f.out, "%s\t%v\n", t.Field(i).Name, v.Field(i).Interface())
		}
		return nil
	}

	fmt.Fprintf(f.out, "%v\n", data)
	return nil
}

func (f *plainFormatter) PrintList(items any, columns []Column) error {
	rows, err := extractRows(items, columns)
	if err != nil {
		return err
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	fmt.Fprintln(f.out, strings.Join(headers, "\t"))

	for _, row := range rows {
		values := make([]string, len(columns))
		for j, col := range columns {
			values[j] = row[col.Key]
		}
		fmt.Fprintln(f.out, strings.Join(values, "\t"))
	}

	return nil
}

func (f *plainFormatter) PrintMessage(msg string) {
	fmt.Fprintln(f.out, msg)
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(f.errOut, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.errOut, "hint: %v\n", msg)
}

// richFormatter outputs styled content for terminal
type richFormatter struct {
	plainFormatter
	profile termenv.Profile
}

func (f *richFormatter) Print(data any) error {
	v := indirect(reflect.ValueOf(data))
	if v.Kind() != reflect.Struct {
		return f.plainFormatter.Print(data)
	}

	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		fmt.Fprintf(f.out, "%s: %s\n",
			f.render(keyStyle, t.Field(i).Name),
			f.render(valueStyle, fmt.Sprintf("%v", v.Field(i).Interface())),
		)
	}
	return nil
}

func (f *richFormatter) PrintList(items any, columns []Column) error {
	rows, err := extractRows(items, columns)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		f.PrintHint("no results")
		return nil
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	RenderTable(f.out, columns, rows, func(s string) string {
		return f.render(headerStyle, s)
	})
	return nil
}

func (f *richFormatter) PrintMessage(msg string) {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fmt.Fprintln(f.out, f.render(style, msg))
}

func (f *richFormatter) PrintError(err error) {
	errorStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("9"))

	fmt.Fprintln(f.errOut, f.render(errorStyle, "error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	hintStyle := lipgloss.NewStyle().
		Faint(true).
		Foreground(lipgloss.Color("8"))

	fmt.Fprintln(f.errOut, f.render(hintStyle, "hint: "+msg))
}

// render styles s unless the terminal has no color support
func (f *richFormatter) render(style lipgloss.Style, s string) string {
	if f.profile == termenv.Ascii {
		return s
	}
	return style.Render(s)
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}

// extractRows flattens a slice of structs or string-keyed maps into column values
func extractRows(items any, columns []Column) ([]map[string]string, error) {
	v := indirect(reflect.ValueOf(items))
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("PrintList requires a slice")
	}

	rows := make([]map[string]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := indirect(v.Index(i))

		row := make(map[string]string, len(columns))
		for _, col := range columns {
			var value reflect.Value
			switch item.Kind() {
			case reflect.Map:
				value = item.MapIndex(reflect.ValueOf(col.Key).Convert(item.Type().Key()))
			case reflect.Struct:
				value = item.FieldByName(col.Key)
			}
			if value.IsValid() {
				row[col.Key] = fmt.Sprintf("%v", value.Interface())
			}
		}
		rows[i] = row
	}
	return rows, nil
}
