package content

import "testing"

func TestLookupLanguage(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
		wantName string
		wantErr  bool
	}{
		{code: "hi", wantCode: "hi", wantName: "Hindi"},
		{code: "es-MX", wantCode: "es", wantName: "Spanish"},
		{code: "zh-Hans", wantCode: "zh", wantName: "Mandarin Chinese"},
		{code: "nl", wantCode: "nl", wantName: "Dutch"},
		{code: "not a language!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			lang, err := LookupLanguage(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if lang.Code != tt.wantCode || lang.Name != tt.wantName {
				t.Errorf("got %+v", lang)
			}
		})
	}
}

func TestLanguageCodesSorted(t *testing.T) {
	codes := LanguageCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}
