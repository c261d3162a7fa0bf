package rod

import "fmt"

// script wraps body in a function taking params. The body's return value
// is sent back as {"data": ...}; thrown errors as {"error", "kind"}.
// all(sel) and first(sel) tag selector syntax errors with kind "selector".
func script(params, body string) string {
	return fmt.Sprintf(`(%s) => {
	const fail = (kind, message) => { const e = new Error(message); e.kind = kind; throw e; };
	const all = (sel) => {
		try { return Array.from(document.querySelectorAll(sel)); }
		catch (e) { fail('selector', e.message); }
	};
	const first = (sel) => {
		const el = all(sel)[0];
		if (!el) fail('not_found', sel);
		return el;
	};
	try {
		const data = (() => { %s })();
		return JSON.stringify({data: data === undefined ? null : data});
	} catch (e) {
		return JSON.stringify({error: String((e && e.message) || e), kind: (e && e.kind) || 'script'});
	}
}`, params, body)
}

var documentJS = script("", `
	const dt = document.doctype ? new XMLSerializer().serializeToString(document.doctype) : '';
	return dt + document.documentElement.outerHTML;
`)

var countJS = script("sel", `return all(sel).length;`)

var applyJS = script("sel, edit, every", `
	const matched = all(sel);
	const targets = every ? matched : matched.slice(0, 1);
	for (const el of targets) {
		switch (edit.kind) {
		case 'text':
			el.textContent = edit.text;
			break;
		case 'innerHTML':
			el.innerHTML = edit.html;
			break;
		case 'style':
			for (const d of edit.properties) el.style.setProperty(d.name, d.value, d.priority);
			break;
		case 'attribute':
			el.setAttribute(edit.name, edit.value);
			break;
		case 'class':
			if (edit.add.length) el.classList.add(...edit.add);
			if (edit.remove.length) el.classList.remove(...edit.remove);
			break;
		case 'replace':
			el.outerHTML = edit.html;
			break;
		case 'hide':
			el.style.setProperty('display', 'none');
			break;
		case 'show':
			el.style.removeProperty('display');
			if (el.getAttribute('style') === '') el.removeAttribute('style');
			break;
		default:
			fail('script', 'unknown edit ' + edit.kind);
		}
	}
	return targets.length;
`)

var treeJS = script("withBounds, maxDepth, maxText", `
	const skip = new Set(['script', 'style', 'noscript', 'meta', 'link', 'template']);
	const body = document.body;
	const kids = body ? Array.from(body.children) : [];
	const root = kids.length === 1 ? kids[0] : (body || document.documentElement);
	const walk = (el, depth) => {
		let text = '';
		for (const n of el.childNodes) if (n.nodeType === Node.TEXT_NODE) text += n.textContent;
		const tag = el.tagName.toLowerCase();
		const node = {
			tag: tag,
			id: typeof el.id === 'string' ? el.id : '',
			classes: Array.from(el.classList),
			text: text.trim().slice(0, maxText),
			depth: depth,
			children: [],
		};
		if (withBounds) {
			const r = el.getBoundingClientRect();
			node.bounds = {top: r.top + window.scrollY, left: r.left + window.scrollX, width: r.width, height: r.height};
		}
		if (depth < maxDepth && tag !== 'svg') {
			for (const c of el.children) {
				if (!skip.has(c.tagName.toLowerCase())) node.children.push(walk(c, depth + 1));
			}
		}
		return node;
	};
	return walk(root, 0);
`)

var elementJS = script("sel, maxText", `
	const el = first(sel);
	const attributes = {};
	for (const a of el.attributes) attributes[a.name] = a.value;
	const text = (el.innerText !== undefined ? el.innerText : el.textContent) || '';
	return {
		tag: el.tagName.toLowerCase(),
		id: typeof el.id === 'string' ? el.id : '',
		classes: Array.from(el.classList),
		text: text.trim().slice(0, maxText),
		html: el.outerHTML,
		attributes: attributes,
	};
`)

var visualJS = script("sel, maxText", `
	const el = first(sel);
	const cs = getComputedStyle(el);
	const r = el.getBoundingClientRect();
	const text = (el.innerText !== undefined ? el.innerText : el.textContent) || '';
	return {
		tag: el.tagName.toLowerCase(),
		classes: Array.from(el.classList),
		text: text.trim().slice(0, maxText),
		colors: {background: cs.backgroundColor, foreground: cs.color, border: cs.borderColor},
		style: {
			font_size: cs.fontSize,
			font_weight: cs.fontWeight,
			font_family: cs.fontFamily,
			line_height: cs.lineHeight,
			padding: cs.padding,
			margin: cs.margin,
			border_radius: cs.borderRadius,
			display: cs.display,
			position: cs.position,
			text_align: cs.textAlign,
			opacity: cs.opacity,
		},
		rect: {x: r.x + window.scrollX, y: r.y + window.scrollY, width: r.width, height: r.height},
	};
`)

var sampleJS = script("limit", `
	const transparent = (c) => !c || c === 'transparent' || c === 'rgba(0, 0, 0, 0)';
	const colors = [], fonts = [], seenColor = new Set(), seenFont = new Set(), display = {};
	const els = Array.from(document.querySelectorAll('body *')).slice(0, limit);
	for (const el of els) {
		const cs = getComputedStyle(el);
		for (const c of [cs.color, cs.backgroundColor, cs.borderTopColor]) {
			if (!transparent(c) && !seenColor.has(c)) { seenColor.add(c); colors.push(c); }
		}
		const f = cs.fontFamily;
		if (f && !seenFont.has(f)) { seenFont.add(f); fonts.push(f); }
		display[cs.display] = (display[cs.display] || 0) + 1;
	}
	const region = (el) => {
		if (!el) return null;
		const cs = getComputedStyle(el);
		return {
			tag: el.tagName.toLowerCase(),
			background: cs.backgroundColor,
			foreground: cs.color,
			height: el.getBoundingClientRect().height,
			position: cs.position,
			font_family: cs.fontFamily,
			font_size: cs.fontSize,
		};
	};
	const header = document.querySelector("header, nav, [role='banner'], .header, #header");
	const hero = document.querySelector(".hero, #hero, [class*='hero'], [class*='banner']");
	return {
		url: location.href,
		title: document.title,
		html: document.documentElement.outerHTML,
		colors: colors,
		fonts: fonts,
		display_counts: display,
		header: region(header),
		hero: region(hero),
		sampled: els.length,
	};
`)
