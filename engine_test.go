package autoimport

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jward/autoimport/internal/syntax"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func transform(t *testing.T, e *Engine, src string) Result {
	t.Helper()
	return e.Transform(context.Background(), src)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	assert.Equal(t, DefaultCatalog().Entries(), e.Catalog().Entries())
	assert.Equal(t, syntax.DefaultDialects, e.dialects)
	assert.NotNil(t, e.logger)
}

func TestNew_UnknownDialect(t *testing.T) {
	t.Parallel()

	_, err := New(WithDialects("cobol"))
	require.Error(t, err)
}

func TestTransform_EndToEnd(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithCatalog(MustCatalog(
		Entry{Name: "useState", From: "#imports"},
		Entry{Name: "useRuntimeConfig", From: "#imports"},
	)))
	src := "const s = useState('c', () => 0); const cfg = useRuntimeConfig();"

	res := transform(t, e, src)

	assert.True(t, res.Changed)
	assert.False(t, res.ParseFailed)
	assert.Equal(t, src, res.Original)
	assert.Equal(t, "import { useState, useRuntimeConfig } from \"#imports\";\n"+src, res.Output)
	assert.Equal(t, []ImportGroup{{From: "#imports", Names: []string{"useState", "useRuntimeConfig"}}}, res.Added)
}

func TestTransform_MinimalAddition(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src := `
const state = useState('count', () => 0);
const config = useRuntimeConfig();
const data = useFetch('/api/data');
`
	res := transform(t, e, src)

	require.True(t, res.Changed)
	assert.Contains(t, res.Output, `import { useState, useRuntimeConfig, useFetch } from "#imports";`)
	assert.Equal(t, 1, strings.Count(res.Output, `from "#imports"`))
	assert.True(t, strings.HasSuffix(res.Output, src[1:]), "original statements must follow unchanged")
}

func TestTransform_NestedCall(t *testing.T) {
	t.Parallel()

	res := transform(t, newTestEngine(t), `
defineNuxtComponent({
  setup() {
    return {};
  }
});
`)
	assert.Contains(t, res.Output, `import { defineNuxtComponent } from "#imports";`)
}

func TestTransform_NoOpWhenSatisfied(t *testing.T) {
	t.Parallel()

	src := `
import { defineNuxtComponent, useState, useRuntimeConfig, useFetch } from '#imports';

defineNuxtComponent({
  setup() {
    const state = useState('count', () => 0);
    const config = useRuntimeConfig();
    const data = useFetch('/api/data');
    return {};
  }
});
`
	res := transform(t, newTestEngine(t), src)
	assert.False(t, res.Changed)
	assert.Equal(t, src, res.Output)
	assert.Nil(t, res.Added)
}

func TestTransform_PartialCoverage(t *testing.T) {
	t.Parallel()

	src := `
import { useState } from '#imports';

const state = useState('count', () => 0);
const config = useRuntimeConfig();
`
	res := transform(t, newTestEngine(t), src)

	require.True(t, res.Changed)
	assert.Contains(t, res.Output, `import { useRuntimeConfig } from "#imports";`)
	assert.Contains(t, res.Output, `import { useState } from '#imports';`)
	assert.NotContains(t, res.Output, `import { useState } from "#imports"`)
}

func TestTransform_ImportFromOtherModuleStillMissing(t *testing.T) {
	t.Parallel()

	src := "import { useFetch } from 'ofetch';\nuseFetch('/x');\n"
	res := transform(t, newTestEngine(t), src)

	require.True(t, res.Changed)
	assert.Equal(t, "import { useFetch } from \"#imports\";\n"+src, res.Output)
}

func TestTransform_ComponentTagsOnly(t *testing.T) {
	t.Parallel()

	src := `
<template>
  <NuxtLink to="/about">About</NuxtLink>
  <Suspense>
    <NuxtPage />
  </Suspense>
</template>
`
	res := transform(t, newTestEngine(t), src)

	require.True(t, res.Changed)
	assert.Contains(t, res.Output, `import { NuxtLink, Suspense, NuxtPage } from "#components";`)
}

func TestTransform_GroupsFollowCatalogOrder(t *testing.T) {
	t.Parallel()

	src := "const v = <NuxtPage />;\nconst f = useFetch('/a');\n"
	res := transform(t, newTestEngine(t), src)

	want := "import { useFetch } from \"#imports\";\n" +
		"import { NuxtPage } from \"#components\";\n" + src
	assert.Equal(t, want, res.Output)
}

func TestTransform_UnrecognizedIdentifiersIgnored(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"console.log('Hello, world!');",
		"useSomethingElse(); const w = <MyWidget />;",
		"const t = obj.useState();",
	} {
		res := transform(t, newTestEngine(t), src)
		assert.False(t, res.Changed, src)
		assert.NotContains(t, res.Output, "import ", src)
	}
}

func TestTransform_NoOpOnParseFailure(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	e := newTestEngine(t, WithLogger(zap.New(core)))

	src := "const a = useState("
	res := transform(t, e, src)

	assert.True(t, res.ParseFailed)
	assert.False(t, res.Changed)
	assert.Equal(t, src, res.Output)
	assert.Equal(t, 1, logs.FilterMessage("leaving source unchanged").Len())
}

func TestTransform_Idempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	inputs := []string{
		"const s = useState('c', () => 0); const cfg = useRuntimeConfig();",
		"\nimport { useState } from '#imports'\nuseState(); useFetch('/x')\n",
		"const v = <Suspense><NuxtLayout /></Suspense>;\n",
		"#!/usr/bin/env node\nuseFetch('/x')\n",
		"not valid (",
		"",
	}
	for _, src := range inputs {
		once := transform(t, e, src)
		twice := transform(t, e, once.Output)
		assert.Equal(t, once.Output, twice.Output, "input %q", src)
		assert.False(t, twice.Changed, "input %q", src)
	}
}

func TestTransform_ShadowedNameStillCounts(t *testing.T) {
	t.Parallel()

	src := "function f() {\n  const useState = (v) => v;\n  return useState(1);\n}\n"
	res := transform(t, newTestEngine(t), src)
	assert.True(t, res.Changed)
}

func TestTransform_TypeScriptSource(t *testing.T) {
	t.Parallel()

	src := "const n = useState<number>('n', () => 0);\nconst cfg = <any>useRuntimeConfig();\n"
	res := newTestEngine(t).TransformPath(context.Background(), "composables/n.ts", src)

	require.True(t, res.Changed, "output: %s", res.Output)
	assert.Equal(t, "import { useState, useRuntimeConfig } from \"#imports\";\n"+src, res.Output)
}

func TestTransform_TypeOnlyImportDoesNotSatisfy(t *testing.T) {
	t.Parallel()

	src := "import type { useState } from '#imports';\nuseState('k');\n"
	res := transform(t, newTestEngine(t), src)
	assert.Equal(t, "import { useState } from \"#imports\";\n"+src, res.Output)
}

func TestTransform_AliasedImport(t *testing.T) {
	t.Parallel()

	src := "import { useState as state } from '#imports';\nuseState('k');\n"
	res := transform(t, newTestEngine(t), src)
	assert.True(t, res.Changed, "the local binding is state, not useState")
}

func TestTransform_EscapesSpecifier(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithCatalog(MustCatalog(Entry{Name: "load", From: `my"mod`})))
	res := transform(t, e, "load();")
	assert.Equal(t, "import { load } from \"my\\\"mod\";\nload();", res.Output)

	again := transform(t, e, res.Output)
	assert.False(t, again.Changed)
}

func TestTransformString(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	assert.Equal(t, "import { useFetch } from \"#imports\";\nuseFetch()", e.TransformString("useFetch()"))
	assert.Equal(t, "const a =", e.TransformString("const a ="))
}

func TestTransform_ConcurrentUse(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src := "useState(); const v = <NuxtLink />;"
	want := transform(t, e, src).Output

	done := make(chan string, 16)
	for range 16 {
		go func() {
			done <- e.Transform(context.Background(), src).Output
		}()
	}
	for range 16 {
		assert.Equal(t, want, <-done)
	}
}

func TestTransform_KeepsDirectivesAboveImports(t *testing.T) {
	t.Parallel()

	src := "/// <reference types=\"vite/client\" />\n// @ts-check\nconst a = useState()\n"
	res := newTestEngine(t).TransformPath(context.Background(), "x.ts", src)

	require.True(t, res.Changed)
	assert.Equal(t, "/// <reference types=\"vite/client\" />\n// @ts-check\n"+
		"import { useState } from \"#imports\";\nconst a = useState()\n", res.Output)

	again := newTestEngine(t).TransformPath(context.Background(), "x.ts", res.Output)
	assert.False(t, again.Changed)
}

func TestTransform_CRLFSource(t *testing.T) {
	t.Parallel()

	res := transform(t, newTestEngine(t), "\r\nconst a = useState()\r\nconst b = <NuxtPage />\r\n")
	assert.Equal(t, "\r\nimport { useState } from \"#imports\";\r\n"+
		"import { NuxtPage } from \"#components\";\r\n"+
		"const a = useState()\r\nconst b = <NuxtPage />\r\n", res.Output)
	assert.NotContains(t, strings.ReplaceAll(res.Output, "\r\n", ""), "\n")
}
