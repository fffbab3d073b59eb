package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/storage"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// Run from the project root
	if strings.HasSuffix(cwd, "core") || strings.HasSuffix(cwd, "storage") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}

	generateCore()
	generateStorage()
}

func generateCore() {
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/vecload/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.ID]())

	write("./core/id_mus.gen.go", g.Generate)
}

func generateStorage() {
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/vecload/storage"),
	)
	if err != nil {
		panic(err)
	}

	// Unix micro timestamps
	opts := typeops.WithTimeUnit(typeops.Micro)
	err = g.AddStruct(reflect.TypeFor[storage.IndexRecord](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(opts))
	if err != nil {
		panic(err)
	}

	write("./storage/records_mus.gen.go", g.Generate)
}

func write(path string, generate func() ([]byte, error)) {
	bs, err := generate()
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, bs, 0644); err != nil {
		panic(err)
	}
}
