// SPDX-License-Identifier: MPL-2.0

package devserver

import "bytes"

// ReloadScript keeps the game UI engine showing the page and polls
// /reload-check, reloading the page when a change was mirrored.
const ReloadScript = `
<script>
(function() {

    // Needed for the engine to actually show our UI
    setInterval(() => {
        if (typeof engine !== 'undefined' && engine.trigger) {
            engine.trigger("Show");
        }
    }, 1000);

    let lastCheck = Date.now();
    setInterval(async () => {
        try {
            const response = await fetch('/reload-check?t=' + lastCheck);
            const data = await response.json();
            if (data.reload) {
                console.log('Changes detected, reloading...');
                location.reload();
            }
            lastCheck = Date.now();
        } catch (e) {
            console.log('Reload check failed:', e);
        }
    }, 500);
})();
</script>
`

var closingBody = []byte("</body>")

// InjectReloadScript inserts ReloadScript before every </body> tag, or
// appends it when the page has none.
func InjectReloadScript(page []byte) []byte {
	script := []byte(ReloadScript)
	if !bytes.Contains(page, closingBody) {
		out := make([]byte, 0, len(page)+len(script))
		return append(append(out, page...), script...)
	}
	return bytes.ReplaceAll(page, closingBody, append(script, closingBody...))
}
