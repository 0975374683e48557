package service

import (
	"strings"
	"testing"

	"expedientes-backend/models"
)

func TestFormatDateNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"16 de febrero de 2026", "16-02-2026"},
		{"3 de enero del 2020", "03-01-2020"},
		{"16/02/2026", "16-02-2026"},
		{"16-02-2026", "16-02-2026"},
		{"16.02.2026", "16-02-2026"},
		{"1/2/2026", "01-02-2026"},
		{"No se consigna", ""},
		{"NO SE CONSIGNA", ""},
		{"", ""},
		{"ab", ""},
		{"fecha pendiente", "fecha pendiente"},
		{"marzo 2026", "marzo 2026"},
	}
	for _, c := range cases {
		if got := FormatDateNumeric(c.in); got != c.want {
			t.Errorf("FormatDateNumeric(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"56912345678", "9 1234 5678"},
		{"+56 9 1234 5678", "9 1234 5678"},
		{"912345678", "9 1234 5678"},
		{"9-1234-5678", "9 1234 5678"},
		{"2212345", "2212345"},
		{"NO SE CONSIGNA", "NO SE CONSIGNA"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FormatPhone(c.in); got != c.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"JUAN PÉREZ SOTO", "Juan Pérez Soto"},
		{"maría-josé o'higgins", "María-José O'Higgins"},
		{"pasaje (interior) 5", "Pasaje (Interior) 5"},
		{"", ""},
	}
	for _, c := range cases {
		if got := TitleCase(c.in); got != c.want {
			t.Errorf("TitleCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseName(t *testing.T) {
	cases := []struct {
		in   string
		want ParsedName
	}{
		{"JUAN ANDRÉS PÉREZ SOTO", ParsedName{Names: "Juan Andrés", Last1: "Pérez", Last2: "Soto"}},
		{"ana rojas díaz", ParsedName{Names: "Ana", Last1: "Rojas", Last2: "Díaz"}},
		{"ana rojas", ParsedName{Names: "Ana", Last1: "Rojas"}},
		{"ana", ParsedName{Names: "Ana"}},
		{"", ParsedName{}},
	}
	for _, c := range cases {
		got := ParseName(c.in)
		if got != c.want {
			t.Errorf("ParseName(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestFormatAddress(t *testing.T) {
	got := FormatAddress("los aromos 123, san bernardo")
	want := "Los Aromos 123, SAN BERNARDO"
	if got != want {
		t.Errorf("FormatAddress = %q, want %q", got, want)
	}
}

func TestFormatRelationship(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Madre de los NNA", "Madre"},
		{"PADRE", "Padre"},
		{"abuela materna", "Abuela Materna"},
	}
	for _, c := range cases {
		if got := FormatRelationship(c.in); got != c.want {
			t.Errorf("FormatRelationship(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func personWith(role, name, rut string) models.PersonEntity {
	p := models.PersonEntity{}
	p.Role = models.SourcedValue{Value: role}
	p.Name = models.SourcedValue{Value: name}
	p.Rut = models.SourcedValue{Value: rut}
	p.Phones = models.SourcedValue{Value: models.NotRecorded}
	p.Address = models.SourcedValue{Value: models.NotRecorded}
	return p
}

func recordWithPeople(people ...models.PersonEntity) *models.CaseRecord {
	data := models.EmptyCaseData()
	data.People = people
	data.Rit.Value = "P-123-2026"
	return &models.CaseRecord{ID: "case-1", Analysis: data}
}

func TestConsolidateRowsOnePerMinor(t *testing.T) {
	rec := recordWithPeople(
		personWith("NNA", "SOFÍA ANDREA MUÑOZ LARA", "25.111.222-3"),
		personWith("Hijo", "PEDRO MUÑOZ LARA", "26.444.555-6"),
		personWith("Madre", "CARLA ANDREA LARA PINTO", "15.666.777-8"),
	)

	rows := ConsolidateRows(rec)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].NnaNames != "Sofía Andrea" || rows[0].NnaLast1 != "Muñoz" || rows[0].NnaLast2 != "Lara" {
		t.Errorf("minor name split wrong: %+v", rows[0])
	}
	for _, row := range rows {
		if row.AdultName != "Carla Andrea Lara Pinto" {
			t.Errorf("adult name = %q", row.AdultName)
		}
		if row.AdultRel != "Madre" {
			t.Errorf("adult relationship = %q", row.AdultRel)
		}
		if row.Rit != "P-123-2026" {
			t.Errorf("rit = %q", row.Rit)
		}
	}
}

func TestConsolidateRowsPlaceholderWhenNoMinor(t *testing.T) {
	rec := recordWithPeople(
		personWith("Madre", "CARLA LARA PINTO", "15.666.777-8"),
	)

	rows := ConsolidateRows(rec)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].NnaNames != "No Identificado" || rows[0].NnaRut != "-" {
		t.Errorf("placeholder row wrong: %+v", rows[0])
	}
	if rows[0].AdultName != "Carla Lara Pinto" {
		t.Errorf("adult still expected on placeholder row, got %q", rows[0].AdultName)
	}
}

func TestConsolidateRowsNoAdult(t *testing.T) {
	rec := recordWithPeople(
		personWith("NNA", "SOFÍA MUÑOZ LARA", "25.111.222-3"),
	)

	rows := ConsolidateRows(rec)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].AdultName != "No Identificado" || rows[0].AdultRel != "-" || rows[0].AdultPhone != "-" {
		t.Errorf("missing-adult defaults wrong: %+v", rows[0])
	}
}

func TestConsolidateRowsDedupesMinorVariants(t *testing.T) {
	// Same RUT under two role spellings must not produce two rows.
	rec := recordWithPeople(
		personWith("NNA", "SOFÍA MUÑOZ LARA", "25.111.222-3"),
		personWith("Niña", "SOFÍA MUÑOZ LARA", "25.111.222-3"),
	)

	rows := ConsolidateRows(rec)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestRowTSVColumnOrder(t *testing.T) {
	row := models.ConsolidatedRow{
		NnaNames: "Sofía", NnaLast1: "Muñoz", NnaLast2: "Lara",
		NnaRut: "25.111.222-3", Rit: "P-123-2026", Hearing: "16-02-2026",
		AdultName: "Carla Lara", AdultRel: "Madre", AdultRut: "15.666.777-8",
		AdultPhone: "9 1234 5678", AdultAddress: "Los Aromos 123, SAN BERNARDO",
	}
	fields := strings.Split(RowTSV(row), "\t")
	if len(fields) != 12 {
		t.Fatalf("got %d columns, want 12", len(fields))
	}
	if fields[4] != "" {
		t.Errorf("delivery date column should stay empty, got %q", fields[4])
	}
	if fields[11] != `"Los Aromos 123, SAN BERNARDO"` {
		t.Errorf("address column = %q, want quoted", fields[11])
	}
}
