package templatectx

import "strconv"

// Raw возвращает контекст в виде плоских данных для сохранения:
// поля скалярами, таблицы списками объектов. Именно эта форма лежит
// в raw_data должника, FromRaw восстанавливает из нее контекст.
func (c *Context) Raw() map[string]any {
	raw := make(map[string]any, len(c.Fields)+len(c.Tables))
	for k, v := range c.Fields {
		raw[k] = v
	}
	for name, rows := range c.Tables {
		items := make([]any, 0, len(rows))
		for _, row := range rows {
			obj := make(map[string]any, len(row))
			for k, v := range row {
				obj[k] = v
			}
			items = append(items, obj)
		}
		raw[name] = items
	}
	return raw
}

// FromRaw строит контекст из сохраненных данных должника после ручной
// правки. Скалярные значения становятся полями, списки объектов таблицами,
// остальное (вложенные объекты, списки скаляров) в шаблоны не попадает.
func FromRaw(raw map[string]any) *Context {
	ctx := &Context{
		Fields: make(map[string]string),
		Tables: make(map[string][]map[string]string),
	}

	for key, value := range raw {
		if s, ok := scalarString(value); ok {
			ctx.Fields[key] = s
			continue
		}
		items, ok := value.([]any)
		if !ok {
			continue
		}
		rows := tableRows(items)
		if rows != nil {
			ctx.Tables[key] = rows
		}
	}

	return ctx
}

func tableRows(items []any) []map[string]string {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		row := make(map[string]string)
		for k, v := range obj {
			if s, ok := scalarString(v); ok {
				row[k] = s
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		// json.Unmarshal дает float64 для всех чисел
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "", true
	}
	return "", false
}
