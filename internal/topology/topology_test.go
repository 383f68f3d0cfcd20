package topology

import (
	"strings"
	"testing"

	"github.com/muurk/sonoslink/internal/upnp"
)

// escape embeds a document in a SOAP argument the way a player does
func escape(doc string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(doc)
}

const threeGroups = `<ZoneGroups>` +
	`<ZoneGroup Coordinator="RINCON_000E58A0000101400" ID="RINCON_000E58A0000101400:5">` +
	`<ZoneGroupMember UUID="RINCON_000E58A0000101400" Location="http://192.168.1.69:1400/xml/device_description.xml" ZoneName="Kitchen" Icon="x-rincon-roomicon:kitchen" SoftwareVersion="34.7-34220"/>` +
	`</ZoneGroup>` +
	`<ZoneGroup Coordinator="RINCON_000E58A0000201400" ID="RINCON_000E58A0000201400:9">` +
	`<ZoneGroupMember UUID="RINCON_000E58A0000201400" Location="http://192.168.1.70:1400/xml/device_description.xml" ZoneName="Living Room"/>` +
	`</ZoneGroup>` +
	`<ZoneGroup Coordinator="RINCON_000E58A0000301400" ID="RINCON_000E58A0000301400:2">` +
	`<ZoneGroupMember UUID="RINCON_000E58A0000301400" Location="http://192.168.1.71:1400/xml/device_description.xml" ZoneName="Bedroom"/>` +
	`</ZoneGroup>` +
	`</ZoneGroups>`

func TestExtract_ThreeGroups(t *testing.T) {
	records, err := Extract(escape(threeGroups))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Extract() returned %d records, want 3", len(records))
	}

	wantIPs := []string{"192.168.1.69", "192.168.1.70", "192.168.1.71"}
	wantNames := []string{"Kitchen", "Living Room", "Bedroom"}
	for i, rec := range records {
		if len(rec.Players) != 1 {
			t.Fatalf("record %d has %d players, want 1", i, len(rec.Players))
		}
		p := rec.Players[0]
		if p.UUID != rec.Coordinator {
			t.Errorf("record %d player UUID %q != coordinator %q", i, p.UUID, rec.Coordinator)
		}
		if p.IP != wantIPs[i] {
			t.Errorf("record %d IP = %q, want %q", i, p.IP, wantIPs[i])
		}
		if p.Name != wantNames[i] {
			t.Errorf("record %d Name = %q, want %q", i, p.Name, wantNames[i])
		}
	}
}

func TestExtract_TwoMemberGroup(t *testing.T) {
	doc := `<ZoneGroupState><ZoneGroups>` +
		`<ZoneGroup Coordinator="RINCON_A" ID="RINCON_A:1">` +
		`<ZoneGroupMember UUID="RINCON_B" Location="http://10.0.0.12:1400/xml/device_description.xml" ZoneName="Patio"/>` +
		`<ZoneGroupMember UUID="RINCON_A" Location="http://10.0.0.11:1400/xml/device_description.xml" ZoneName="Kitchen">` +
		`<Satellite UUID="RINCON_SUB" Location="http://10.0.0.13:1400/xml/device_description.xml" ZoneName="Kitchen"/>` +
		`</ZoneGroupMember>` +
		`</ZoneGroup>` +
		`</ZoneGroups><VanishedDevices></VanishedDevices></ZoneGroupState>`

	records, err := Extract(escape(doc))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Coordinator != "RINCON_A" {
		t.Errorf("Coordinator = %q, want RINCON_A", rec.Coordinator)
	}
	if len(rec.Players) != 2 {
		t.Fatalf("got %d players, want 2 (satellites are not members): %+v", len(rec.Players), rec.Players)
	}
	if rec.Players[0].UUID != "RINCON_B" || rec.Players[1].UUID != "RINCON_A" {
		t.Errorf("players out of document order: %+v", rec.Players)
	}
	if p, ok := rec.Player("RINCON_A"); !ok || p.IP != "10.0.0.11" {
		t.Errorf("Player(RINCON_A) = %+v, %v", p, ok)
	}
}

func TestExtract_Empty(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty string", ""},
		{"no groups", escape("<ZoneGroupState><ZoneGroups></ZoneGroups></ZoneGroupState>")},
		{"self-closing groups", escape("<ZoneGroups/>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Extract(tt.value)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if records == nil || len(records) != 0 {
				t.Errorf("Extract() = %#v, want empty non-nil slice", records)
			}
		})
	}
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "eof before coordinator",
			doc:  `<ZoneGroups><ZoneGroup ID="x"`,
		},
		{
			name: "group closed without coordinator",
			doc:  `<ZoneGroups><ZoneGroup ID="x"></ZoneGroup></ZoneGroups>`,
		},
		{
			name: "eof inside group body",
			doc:  `<ZoneGroups><ZoneGroup Coordinator="A"><ZoneGroupMember UUID="A" ZoneName="K" Location="http://1.2.3.4:1400/"/>`,
		},
		{
			name: "member missing Location",
			doc:  `<ZoneGroup Coordinator="A"><ZoneGroupMember UUID="A" ZoneName="K"/></ZoneGroup>`,
		},
		{
			name: "member missing attributes at eof",
			doc:  `<ZoneGroup Coordinator="A"><ZoneGroupMember UUID="A"`,
		},
		{
			name: "unparseable location",
			doc:  `<ZoneGroup Coordinator="A"><ZoneGroupMember UUID="A" ZoneName="K" Location="::nope"/></ZoneGroup>`,
		},
		{
			name: "eof inside markup while seeking group",
			doc:  `<ZoneGroups><Zone`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(escape(tt.doc))
			if err == nil {
				t.Fatal("Extract() should fail")
			}
			if !upnp.IsMalformedTopology(err) {
				t.Errorf("Extract() error = %v, want malformed topology", err)
			}
		})
	}
}

func TestExtract_PartialGroupsNotReturnedOnError(t *testing.T) {
	doc := threeGroups[:strings.Index(threeGroups, `<ZoneGroup Coordinator="RINCON_000E58A0000301400"`)] +
		`<ZoneGroup Coordinator="RINCON_000E58A0000301400">`

	records, err := Extract(escape(doc))
	if err == nil {
		t.Fatal("Extract() should fail on a truncated third group")
	}
	if records != nil {
		t.Errorf("records = %v, want nil on error", records)
	}
}

func TestExtract_DoublyEscapedName(t *testing.T) {
	// The player escapes the apostrophe in the attribute, then escapes the
	// whole document again when embedding it.
	doc := `<ZoneGroup Coordinator="A"><ZoneGroupMember UUID="A" ZoneName="Bob&apos;s Room" Location="http://192.168.1.69:1400/xml/device_description.xml"/></ZoneGroup>`

	value := escape(doc)
	if !strings.Contains(value, "&amp;apos;") {
		t.Fatalf("fixture should contain a doubly escaped quote: %s", value)
	}

	records, err := Extract(value)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := records[0].Players[0].Name; got != "Bob's Room" {
		t.Errorf("Name = %q, want %q", got, "Bob's Room")
	}
}

func TestExtract_DuplicateMemberLastWins(t *testing.T) {
	doc := `<ZoneGroup Coordinator="A">` +
		`<ZoneGroupMember UUID="A" ZoneName="Old" Location="http://10.0.0.1:1400/"/>` +
		`<ZoneGroupMember UUID="A" ZoneName="New" Location="http://10.0.0.2:1400/"/>` +
		`</ZoneGroup>`

	records, err := Extract(escape(doc))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	players := records[0].Players
	if len(players) != 1 {
		t.Fatalf("got %d players, want 1", len(players))
	}
	if players[0].Name != "New" || players[0].IP != "10.0.0.2" {
		t.Errorf("player = %+v, want the later entry", players[0])
	}
}

func TestState_String(t *testing.T) {
	if seekMemberAttrs.String() != "seekMemberAttrs" {
		t.Errorf("String() = %q", seekMemberAttrs.String())
	}
	if state(42).String() != "state(42)" {
		t.Errorf("String() = %q", state(42).String())
	}
}
