package config

import (
	"reflect"
	"testing"
	"time"
)

func TestBrokerList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"broker1:9092", []string{"broker1:9092"}},
		{"broker1:9092, broker2:9092", []string{"broker1:9092", "broker2:9092"}},
		{"broker1:9092,,broker2:9092", []string{"broker1:9092", "broker2:9092"}},
	}
	for _, tc := range cases {
		got := KafkaConfig{Brokers: tc.in}.BrokerList()
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("BrokerList(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestDurationSecondsSetValue(t *testing.T) {
	var d durationSeconds
	if err := d.SetValue("90"); err != nil {
		t.Fatal(err)
	}
	if d.Duration() != 90*time.Second {
		t.Fatalf("got %v want 90s", d.Duration())
	}
	if err := d.SetValue("2h"); err != nil {
		t.Fatal(err)
	}
	if d.Duration() != 2*time.Hour {
		t.Fatalf("got %v want 2h", d.Duration())
	}
	if err := d.SetValue("later"); err == nil {
		t.Fatal("garbage should fail")
	}
}
