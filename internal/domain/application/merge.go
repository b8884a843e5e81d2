package application

import "time"

// Stamp records who touched the record and when.
type Stamp struct {
	By string
	At time.Time
}

// New builds a record from a submitted body, dropping null and empty values.
func New(body *Body, stamp Stamp) *Application {
	app := &Application{
		CreatedAt: stamp.At,
		CreatedBy: stamp.By,
		UpdatedAt: stamp.At,
		UpdatedBy: stamp.By,
	}
	Merge(app, body)
	return app
}

// Merge applies patch to app in two phases. Everything except status maps
// is deep-merged first: nested objects merge key by key, scalars and lists
// are replaced. Each status map carried by the patch is then assigned
// verbatim, replacing the stored map instead of accumulating keys. A
// category whose patch has no status keeps its stored status. Empty values
// are pruned from the result.
func Merge(app *Application, patch *Body) {
	if app == nil || patch == nil {
		return
	}
	if patch.ApplicantID != nil {
		app.ApplicantID = *patch.ApplicantID
	}
	if patch.ApplicantName != nil {
		app.ApplicantName = *patch.ApplicantName
	}
	if patch.Year != nil {
		app.Year = *patch.Year
	}

	present := patch.Present()
	for _, c := range present {
		in := patch.Category(c)
		cur := app.Category(c)
		if cur == nil {
			cur = &SubApplication{}
			app.SetCategory(c, cur)
		}
		cur.Contents = mergeObject(cur.Contents, in.Contents)
		cur.Attachments = mergeAttachments(cur.Attachments, in.Attachments)
	}
	for _, c := range present {
		if status := patch.Category(c).Status; status != nil {
			app.Category(c).Status = status.Clone()
		}
	}
	Prune(app)
}

func mergeObject(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if vm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				dst[k] = mergeObject(dm, vm)
				continue
			}
		}
		dst[k] = deepCopy(v)
	}
	return dst
}

func mergeAttachments(dst, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for title, files := range src {
		dst[title] = append([]string(nil), files...)
	}
	return dst
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = deepCopy(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = deepCopy(inner)
		}
		return out
	default:
		return v
	}
}

// Prune removes empty strings, nulls, empty objects and empty lists from
// every category, then drops categories left with nothing in them.
func Prune(app *Application) {
	for _, c := range Categories {
		sub := app.Category(c)
		if sub == nil {
			continue
		}
		if sub.Status != nil {
			sub.Status.prune()
			if sub.Status.Len() == 0 {
				sub.Status = nil
			}
		}
		sub.Contents = pruneObject(sub.Contents)
		sub.Attachments = pruneAttachments(sub.Attachments)
		if sub.empty() {
			app.SetCategory(c, nil)
		}
	}
}

func pruneObject(m map[string]any) map[string]any {
	for k, v := range m {
		kept, ok := pruneValue(v)
		if !ok {
			delete(m, k)
			continue
		}
		m[k] = kept
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func pruneValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		return t, t != ""
	case map[string]any:
		out := pruneObject(t)
		return out, out != nil
	case []any:
		out := t[:0]
		for _, inner := range t {
			if kept, ok := pruneValue(inner); ok {
				out = append(out, kept)
			}
		}
		return out, len(out) > 0
	default:
		return v, true
	}
}

func pruneAttachments(m map[string][]string) map[string][]string {
	for title, files := range m {
		kept := files[:0]
		for _, f := range files {
			if f != "" {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			delete(m, title)
			continue
		}
		m[title] = kept
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
