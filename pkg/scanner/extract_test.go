package scanner

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestExtractSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "simple imports",
			source: "import os\nimport sys\nfrom collections import defaultdict\nfrom math import sqrt\n",
			want:   []string{"collections", "math", "os", "sys"},
		},
		{
			name:   "dotted and aliased",
			source: "import os.path\nimport numpy as np, pandas.core as pc\n",
			want:   []string{"numpy", "os", "pandas"},
		},
		{
			name:   "from dotted module",
			source: "from google.cloud import storage\nfrom xml.etree.ElementTree import parse\n",
			want:   []string{"google", "xml"},
		},
		{
			name:   "relative imports",
			source: "from . import sibling\nfrom .. import parent\nfrom .utils.helpers import helper\n",
			want:   []string{"utils"},
		},
		{
			name:   "future import",
			source: "from __future__ import annotations\nimport attr\n",
			want:   []string{"__future__", "attr"},
		},
		{
			name:   "nested imports",
			source: "def f():\n    import requests\n    return requests\n\ntry:\n    import ujson as json\nexcept ImportError:\n    import json\n",
			want:   []string{"json", "requests", "ujson"},
		},
		{
			name:   "parenthesized from import",
			source: "from typing import (\n    Any,\n    Dict,\n)\n",
			want:   []string{"typing"},
		},
		{
			name:   "case preserved",
			source: "import Flask\nfrom PIL import Image\n",
			want:   []string{"Flask", "PIL"},
		},
		{
			name:   "comments and strings ignored",
			source: "# import fake_module\nsome_text = 'import os'\ndoc = \"\"\"\nfrom requests import get\n\"\"\"\ndef func():\n    pass\n",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSource(context.Background(), []byte(tt.source))
			if err != nil {
				t.Fatalf("ExtractSource error: %v", err)
			}
			if !reflect.DeepEqual(keys(got), tt.want) {
				t.Errorf("ExtractSource() = %v, want %v", keys(got), tt.want)
			}
		})
	}
}

func TestExtractSourceSyntaxError(t *testing.T) {
	_, err := ExtractSource(context.Background(), []byte("import os\ndef broken_func(: pass\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "simple.py")
	os.WriteFile(good, []byte("import os\nfrom requests import get\n"), 0o644)
	if got := keys(ExtractFile(context.Background(), good)); !reflect.DeepEqual(got, []string{"os", "requests"}) {
		t.Errorf("ExtractFile(simple.py) = %v", got)
	}

	broken := filepath.Join(dir, "broken.py")
	os.WriteFile(broken, []byte("def broken_func(: pass"), 0o644)
	if got := ExtractFile(context.Background(), broken); len(got) != 0 {
		t.Errorf("ExtractFile(broken.py) = %v, want empty", keys(got))
	}

	weird := filepath.Join(dir, "weird.py")
	os.WriteFile(weird, []byte("# import fake_module\nsome_text = 'import os'\n"), 0o644)
	if got := ExtractFile(context.Background(), weird); len(got) != 0 {
		t.Errorf("ExtractFile(weird.py) = %v, want empty", keys(got))
	}

	if got := ExtractFile(context.Background(), filepath.Join(dir, "missing.py")); len(got) != 0 {
		t.Errorf("ExtractFile(missing.py) = %v, want empty", keys(got))
	}
}
