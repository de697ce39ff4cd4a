package autoimport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// benchScriptSource is a realistic script-setup body with a handful of
// composable calls, nested functions and element tags.
const benchScriptSource = `
import { computed, ref } from 'vue'
import type { Item } from '~/types'

const config = useRuntimeConfig()
const page = ref(1)
const filter = useState<string>('filter', () => '')

const { data, refresh } = await useFetch<Item[]>(config.apiBase + '/items', {
  query: { page, filter },
  watch: [page],
})

const visible = computed(() => (data.value ?? []).filter((item) => item.name.includes(filter.value)))

function next() {
  page.value++
  return refresh()
}

const Row = (props: { item: Item }) => (
  <NuxtLink to={'/items/' + props.item.id}>{props.item.name}</NuxtLink>
)

const Shell = () => (
  <Suspense>
    <NuxtLayout>
      <NuxtPage />
    </NuxtLayout>
  </Suspense>
)

export default defineNuxtComponent({
  setup() {
    return { visible, next, Row, Shell }
  },
})
`

func newBenchEngine(b *testing.B) *Engine {
	b.Helper()
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}
	return e
}

// BenchmarkTransform measures one full parse, collect, synthesize and print
// cycle on a region that needs two import groups.
func BenchmarkTransform(b *testing.B) {
	e := newBenchEngine(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := e.Transform(ctx, benchScriptSource)
		if !res.Changed {
			b.Fatal("expected imports to be added")
		}
	}
}

// BenchmarkTransform_NoOp measures the common case of an already explicit
// source.
func BenchmarkTransform_NoOp(b *testing.B) {
	e := newBenchEngine(b)
	ctx := context.Background()
	src := e.Transform(ctx, benchScriptSource).Output

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := e.Transform(ctx, src); res.Changed {
			b.Fatal("expected no change")
		}
	}
}

// BenchmarkRun_Project measures a dry run over a generated project of 64
// component files.
func BenchmarkRun_Project(b *testing.B) {
	dir := b.TempDir()
	for i := 0; i < 64; i++ {
		path := filepath.Join(dir, "pages", fmt.Sprintf("page%02d.vue", i))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.Fatal(err)
		}
		content := "<template><div /></template>\n<script setup lang=\"tsx\">" + benchScriptSource + "</script>\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.Fatal(err)
		}
	}

	r := NewRunner(newBenchEngine(b), RunOptions{DryRun: true})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		summary, err := r.Run(ctx, dir)
		if err != nil {
			b.Fatal(err)
		}
		if summary.WouldUpdate != 64 {
			b.Fatalf("WouldUpdate = %d, want 64", summary.WouldUpdate)
		}
	}
}
