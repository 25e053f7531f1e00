package llm

import (
	"reflect"
	"testing"
)

func TestParsePlaceArray(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"plain", `["東京","鎌倉"]`, []string{"東京", "鎌倉"}},
		{"fenced", "```json\n[\"東京\"]\n```", []string{"東京"}},
		{"prose", `抽出結果: ["伊勢", "大和"] 以上です。`, []string{"伊勢", "大和"}},
		{"empty", `[]`, nil},
		{"blank entries", `["東京", "", "  "]`, []string{"東京"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePlaceArray(tt.reply)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePlaceArrayRejectsGarbage(t *testing.T) {
	if _, err := parsePlaceArray("地名はありません"); err == nil {
		t.Fatal("expected error for a reply without a JSON array")
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "bedrock"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatal("empty provider name must disable detection")
	}
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
