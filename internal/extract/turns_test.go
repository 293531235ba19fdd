package extract

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseTurns(t *testing.T) {
	lines := []string{
		"1/29/26, 8:18 PM Conta sua história - Museu da Pessoa",
		"P - Qual o seu nome completo?",
		"R - Meu nome é Adilson,",
		"nascido em São Paulo.",
		"",
		"https://museudapessoa.org/historia/123",
		"2/21",
		"P - E onde o senhor cresceu?",
		"R - Cresci no bairro do Brás.",
		"autoria: Museu da Pessoa",
	}

	got := ParseTurns(lines)
	want := []Turn{
		{Identifier: "p1", Text: "Qual o seu nome completo?"},
		{Identifier: "r1", Text: "Meu nome é Adilson, nascido em São Paulo."},
		{Identifier: "p2", Text: "E onde o senhor cresceu?"},
		{Identifier: "r2", Text: "Cresci no bairro do Brás."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTurns() = %+v, want %+v", got, want)
	}
}

func TestParseTurnsDropsPreamble(t *testing.T) {
	lines := []string{
		"Título da entrevista",
		"texto solto antes do primeiro marcador",
		"P - Primeira pergunta?",
	}
	got := ParseTurns(lines)
	if len(got) != 1 || got[0].Identifier != "p1" {
		t.Errorf("ParseTurns() = %+v, want single p1 turn", got)
	}
}

func TestParseTurnsEmpty(t *testing.T) {
	if got := ParseTurns(nil); len(got) != 0 {
		t.Errorf("ParseTurns(nil) = %+v, want empty", got)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interview_output.csv")
	turns := []Turn{
		{Identifier: "p1", Text: "Qual o seu nome?"},
		{Identifier: "r1", Text: "Maria, \"a costureira\"."},
	}
	if err := WriteCSV(path, turns); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0][0] != "Identifier" || records[0][1] != "Text" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][1] != `Maria, "a costureira".` {
		t.Errorf("quoted text round-trip = %q", records[2][1])
	}
}
