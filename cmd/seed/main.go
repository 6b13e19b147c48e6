// seed genera el script SQL con el catálogo de roles y permisos (desde el
// registro en código) y las categorías globales de movimientos (desde un CSV).
//
// Uso: go run ./cmd/seed [ruta/categorias.csv]
// Por defecto busca categorias.csv en el directorio actual. El CSV viene de
// hojas de cálculo exportadas en Latin-1 (Windows-1252), separado por ';':
//
//	codigo;nombre;tipo
//	VIAT;Viáticos;OUT
//
// Escribe: migrations/002_seed_catalog.sql
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/cashdesk-api/internal/domain/access"
)

// categoryNamespace espacio para derivar IDs estables: volver a correr el seed
// actualiza las mismas filas.
var categoryNamespace = uuid.MustParse("5f1d7c1e-8d0a-4c56-9a53-3b0f6f3c2a10")

type category struct {
	code      string
	name      string
	direction string
}

func main() {
	csvPath := "categorias.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cats, err := readCategories(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer categorías: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if err := writeSQL(w, cats); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d roles, %d categorías\n", outPath, len(access.AllRoles), len(cats))
}

// readCategories decodifica el CSV Latin-1. Omite el encabezado y las filas vacías;
// el último código repetido gana.
func readCategories(r io.Reader) ([]category, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	byCode := make(map[string]category)
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) < 3 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "codigo") {
			continue
		}
		dir := strings.ToUpper(strings.TrimSpace(rec[2]))
		if dir != "IN" && dir != "OUT" {
			return nil, fmt.Errorf("línea %d: tipo %q (se espera IN u OUT)", line, rec[2])
		}
		code := strings.ToUpper(strings.TrimSpace(rec[0]))
		byCode[code] = category{code: code, name: strings.TrimSpace(rec[1]), direction: dir}
	}

	out := make([]category, 0, len(byCode))
	for _, c := range byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].code < out[j].code })
	return out, nil
}

// writeSQL roles y permisos primero; luego categorías globales (company_id NULL).
func writeSQL(w io.Writer, cats []category) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de roles, permisos y categorías globales\n")
	b.WriteString("-- Generado por cmd/seed; no editar a mano.\n\n")

	b.WriteString("-- 1. Roles\n")
	b.WriteString("INSERT INTO roles (name) VALUES\n")
	for i, r := range access.AllRoles {
		fmt.Fprintf(&b, "  ('%s')%s\n", escapeSQL(string(r)), sep(i, len(access.AllRoles)))
	}
	b.WriteString("ON CONFLICT (name) DO NOTHING;\n\n")

	b.WriteString("-- 2. Permisos por rol (el registro en código es la fuente)\n")
	b.WriteString("DELETE FROM role_permissions;\n")
	var rows []string
	for _, r := range access.AllRoles {
		for _, p := range access.PermissionsOf(r) {
			rows = append(rows, fmt.Sprintf("  ('%s', '%s')", escapeSQL(string(r)), escapeSQL(string(p))))
		}
	}
	b.WriteString("INSERT INTO role_permissions (role, permission) VALUES\n")
	b.WriteString(strings.Join(rows, ",\n"))
	b.WriteString(";\n\n")

	if len(cats) > 0 {
		b.WriteString("-- 3. Categorías globales\n")
		b.WriteString("INSERT INTO categories (id, company_id, code, name, direction) VALUES\n")
		for i, c := range cats {
			id := uuid.NewSHA1(categoryNamespace, []byte(c.code))
			fmt.Fprintf(&b, "  ('%s', NULL, '%s', '%s', '%s')%s\n",
				id, escapeSQL(c.code), escapeSQL(c.name), c.direction, sep(i, len(cats)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, direction = EXCLUDED.direction;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
