package core

import "testing"

func TestOptionsNilDefaults(t *testing.T) {
	var o *CommandOptions
	if o.IsGuildOnly() || o.IsHidden() || o.ShouldDeleteCommand() || o.ShouldSendInvalidPermissionMessage() {
		t.Error("nil options must disable every gate")
	}
	if !o.HasCorrectArgs(nil) {
		t.Error("nil options accept any argument count")
	}
	if o.ShouldSendInvalidUsageMessage(nil) {
		t.Error("nil options never send usage notices")
	}
}

func TestOptionsArgs(t *testing.T) {
	o := &CommandOptions{ArgsMin: 2, SendUsageMessage: true}
	tests := []struct {
		name      string
		args      []string
		correct   bool
		wantUsage bool
	}{
		{"too few", []string{"a"}, false, true},
		{"exact", []string{"a", "b"}, true, false},
		{"more than enough", []string{"a", "b", "c"}, true, false},
		{"none", nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.HasCorrectArgs(tt.args); got != tt.correct {
				t.Errorf("HasCorrectArgs = %v, want %v", got, tt.correct)
			}
			if got := o.ShouldSendInvalidUsageMessage(tt.args); got != tt.wantUsage {
				t.Errorf("ShouldSendInvalidUsageMessage = %v, want %v", got, tt.wantUsage)
			}
		})
	}
}

func TestOptionsUsageNoticeRequiresFlag(t *testing.T) {
	o := &CommandOptions{ArgsMin: 1}
	if o.ShouldSendInvalidUsageMessage(nil) {
		t.Error("usage notice is opt-in")
	}
}
