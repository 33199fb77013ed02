package debug

import "testing"

func TestTreeWriter(t *testing.T) {
	tests := []struct {
		name  string
		write func(tw *TreeWriter)
		want  string
	}{
		{
			name:  "empty",
			write: func(*TreeWriter) {},
			want:  "",
		},
		{
			name: "line with depth and formatting",
			write: func(tw *TreeWriter) {
				tw.Line(0, "Document blocks=%d", 3)
				tw.Line(2, "Block[%d]", 1)
			},
			want: "Document blocks=3\n    Block[1]\n",
		},
		{
			name: "text block quotes value",
			write: func(tw *TreeWriter) {
				tw.TextBlock(1, "Text", "tab\there")
				tw.TextBlock(1, "Empty", "")
			},
			want: "  Text: \"tab\\there\"\n  Empty: \n",
		},
		{
			name: "props skip empty values",
			write: func(tw *TreeWriter) {
				tw.Props(1, "Style", "jc", "center", "numId", "", "ilvl", "0")
			},
			want: "  Style jc=\"center\" ilvl=\"0\"\n",
		},
		{
			name: "props ignore dangling key",
			write: func(tw *TreeWriter) {
				tw.Props(0, "Anchor", "name", "labelA", "id")
			},
			want: "Anchor name=\"labelA\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tt.write(tw)
			if got := tw.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
