package devserver

import "bytes"

// ReloadPath is where the live-reload event stream is mounted.
const ReloadPath = "/__reload"

// reloadScript reloads the page on every finished build and reconnects
// after errors.
const reloadScript = `<script>(() => {
  if (window.__gazetteReload) return;
  window.__gazetteReload = true;
  function connect() {
    const es = new EventSource('` + ReloadPath + `');
    es.addEventListener('site.rebuilt', () => location.reload());
    es.addEventListener('site.build_failed', (e) => console.warn('[gazette] build failed', e.data));
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();</script>`

var headClose = [][]byte{[]byte("</head>"), []byte("</HEAD>")}

// InjectReload inserts the live-reload client before the first </head>.
// Documents without a head get the script appended.
func InjectReload(doc []byte) []byte {
	idx := -1
	for _, tag := range headClose {
		if idx = bytes.Index(doc, tag); idx >= 0 {
			break
		}
	}
	out := make([]byte, 0, len(doc)+len(reloadScript))
	if idx < 0 {
		out = append(out, doc...)
		return append(out, reloadScript...)
	}
	out = append(out, doc[:idx]...)
	out = append(out, reloadScript...)
	return append(out, doc[idx:]...)
}
