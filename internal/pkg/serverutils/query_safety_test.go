package serverutils

import "testing"

func TestCheckQuerySafety_RejectsScriptTag(t *testing.T) {
	if err := CheckQuerySafety("tell me about <script>alert(1)</script>"); err == nil {
		t.Fatal("expected an error for a query containing a <script> tag")
	}
}

func TestCheckQuerySafety_RejectsJavascriptURI(t *testing.T) {
	if err := CheckQuerySafety("click javascript:doEvil()"); err == nil {
		t.Fatal("expected an error for a javascript: uri")
	}
}

func TestCheckQuerySafety_RejectsInlineEventHandler(t *testing.T) {
	if err := CheckQuerySafety(`<img src=x onerror=alert(1)>`); err == nil {
		t.Fatal("expected an error for an inline event handler attribute")
	}
}

func TestCheckQuerySafety_IsCaseInsensitive(t *testing.T) {
	if err := CheckQuerySafety("JAVASCRIPT:doEvil()"); err == nil {
		t.Fatal("expected the reject list to match regardless of case")
	}
}

func TestCheckQuerySafety_AllowsOrdinaryQuery(t *testing.T) {
	if err := CheckQuerySafety("what are the health effects of intermittent fasting?"); err != nil {
		t.Fatalf("expected an ordinary research query to pass, got %v", err)
	}
}
