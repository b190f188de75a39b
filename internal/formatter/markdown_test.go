package formatter

import (
	"strings"
	"testing"

	"madison/pkg/metadata"
)

func TestFormatMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Record | Value |
| --- | --- |
| nab_cpu_1 | 90.0 |
`,
			expected: `
| Record    | Value |
| --------- | ----- |
| nab_cpu_1 | 90.0  |
`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| A | B |
| ---------------------- | ---------------------------------- |
| x | y |
`,
			expected: `
| A   | B   |
| --- | --- |
| x   | y   |
`,
		},
		{
			name: "Mixed content keeps prose",
			input: `
## Anomaly Details

|   Severity   |   Value   |
| :--- | ---: |
|   CRITICAL   |   91.2   |

Review workload scaling policies.
`,
			expected: `
## Anomaly Details

| Severity | Value |
| -------- | ----- |
| CRITICAL | 91.2  |

Review workload scaling policies.
`,
		},
		{
			name: "Wide characters",
			input: `
| Date | Headline |
| --- | --- |
| 2025-01-14 | 数据中心负载创新高 |
| 2025-01-15 | Short text |
`,
			expected: `
| Date       | Headline           |
| ---------- | ------------------ |
| 2025-01-14 | 数据中心负载创新高 |
| 2025-01-15 | Short text         |
`,
		},
		{
			name:     "Single row is left alone",
			input:    "| not | a table |",
			expected: "| not | a table |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatMarkdown(strings.TrimSpace(tt.input))
			if err != nil {
				t.Errorf("FormatMarkdown() error = %v", err)

				return
			}

			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatMarkdown() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestFormatMarkdown_ResignsMetadata(t *testing.T) {
	signed := metadata.Sign("| a | b |\n| - | - |\n| 1 | 2 |", true, &metadata.Metadata{RunID: "run-7"})

	got, err := FormatMarkdown(signed)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := metadata.Verify(got)
	if !ok || err != nil {
		t.Fatalf("Verify() = %v, %v", ok, err)
	}

	meta, clean := metadata.Extract(got)
	if !meta.Validation || meta.RunID != "run-7" {
		t.Errorf("meta = %+v", meta)
	}

	if !strings.HasPrefix(clean, "| a   | b   |") {
		t.Errorf("table not formatted:\n%s", clean)
	}
}

func TestTable(t *testing.T) {
	got := Table(
		[]string{"Record", "Value", "Severity"},
		[][]string{
			{"nab_cpu_201", "91.2", "CRITICAL"},
			{"nab_cpu_7", "a|b"},
		},
	)

	want := []string{
		"| Record      | Value | Severity |",
		"| ----------- | ----- | -------- |",
		"| nab_cpu_201 | 91.2  | CRITICAL |",
		`| nab_cpu_7   | a\|b  |          |`,
	}

	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Table() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestFitAndPad(t *testing.T) {
	if got := Fit("abcdefghij", 6); got != "abc..." {
		t.Errorf("Fit() = %q", got)
	}

	if got := Fit("short", 10); got != "short" {
		t.Errorf("Fit() = %q", got)
	}

	if got := Pad("数据", 6); got != "数据  " {
		t.Errorf("Pad() = %q", got)
	}
}

func TestFormatMarkdown_EscapedPipe(t *testing.T) {
	got, err := FormatMarkdown("| a | b |\n| --- | --- |\n| x\\|y | z |")
	if err != nil {
		t.Fatal(err)
	}

	want := "| a    | b   |\n| ---- | --- |\n| x\\|y | z   |"
	if got != want {
		t.Errorf("FormatMarkdown() =\n%s\nwant\n%s", got, want)
	}
}
