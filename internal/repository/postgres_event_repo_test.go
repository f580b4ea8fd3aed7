package repository

import (
	"encoding/json"
	"testing"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

func TestMarshalReminders(t *testing.T) {
	tests := []struct {
		name      string
		reminders []model.Reminder
		want      string
	}{
		{
			name:      "nilは空配列になる",
			reminders: nil,
			want:      `[]`,
		},
		{
			name:      "空リストは空配列になる",
			reminders: []model.Reminder{},
			want:      `[]`,
		},
		{
			name: "格納順が保持される",
			reminders: []model.Reminder{
				{MinutesBefore: 30, Notified: false},
				{MinutesBefore: 10, Notified: true},
			},
			want: `[{"minutesBefore":30,"notified":false},{"minutesBefore":10,"notified":true}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalReminders(tt.reminders)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalReminders(t *testing.T) {
	t.Run("空バイト列は空リストになる", func(t *testing.T) {
		got, err := unmarshalReminders(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty list", got)
		}
	})

	t.Run("JSONB配列を復元できる", func(t *testing.T) {
		data := []byte(`[{"minutesBefore":15,"notified":false},{"minutesBefore":60,"notified":true}]`)
		got, err := unmarshalReminders(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d reminders, want 2", len(got))
		}
		if got[0].MinutesBefore != 15 || got[0].Notified {
			t.Errorf("reminder[0] = %+v", got[0])
		}
		if got[1].MinutesBefore != 60 || !got[1].Notified {
			t.Errorf("reminder[1] = %+v", got[1])
		}
	})

	t.Run("不正なJSONはエラーになる", func(t *testing.T) {
		_, err := unmarshalReminders([]byte(`{not json`))
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// 候補抽出の包含述語が使うJSON形状と、モデルのシリアライズ結果が
// 一致していることを確認する。ここがずれると未通知リマインダーを
// 持つイベントがスイープ対象から漏れる。
func TestReminderJSONShapeMatchesContainmentPredicate(t *testing.T) {
	data, err := json.Marshal(model.Reminder{MinutesBefore: 30, Notified: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := fields["notified"]; !ok {
		t.Error("notified field missing from serialized reminder")
	}
	if _, ok := fields["minutesBefore"]; !ok {
		t.Error("minutesBefore field missing from serialized reminder")
	}
}
