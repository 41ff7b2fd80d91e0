// internal/capture/script.go
package capture

// walkerJS runs inside the page's script engine and emits the raw node list
// in depth-first traversal order. Visibility is computed from layout and
// style at capture time; the computed pointer cursor is folded into the
// attribute map so the actionable filter can use it without a second round
// trip. Capture-local ids are assigned in traversal order and are not stable
// across captures.
const walkerJS = `(() => {
  const MAX_NODES = 4000;
  const MAX_TEXT = 300;
  const nodes = [];
  let nextId = 1;

  const vw = window.innerWidth, vh = window.innerHeight;

  function directText(el) {
    let out = "";
    for (const c of el.childNodes) {
      if (c.nodeType === Node.TEXT_NODE) out += c.textContent;
    }
    return out.trim().slice(0, MAX_TEXT);
  }

  function visit(el, parentId, depth) {
    if (nodes.length >= MAX_NODES) return;

    const id = nextId++;
    const cs = window.getComputedStyle(el);
    const rect = el.getBoundingClientRect();
    const rendered = rect.width > 0 || rect.height > 0;
    const visible = cs.display !== "none" && cs.visibility !== "hidden" &&
      parseFloat(cs.opacity) > 0 && rendered;
    const inViewport = rect.bottom > 0 && rect.right > 0 &&
      rect.top < vh && rect.left < vw;

    const attrs = {};
    for (const a of el.attributes) attrs[a.name] = a.value;
    if (cs.cursor === "pointer") attrs["cursor"] = "pointer";
    if (cs.zIndex && cs.zIndex !== "auto") attrs["z-index"] = cs.zIndex;

    nodes.push({
      id: id,
      tag: el.tagName.toLowerCase(),
      type: "element",
      attributes: attrs,
      text: directText(el),
      visible: visible,
      in_viewport: inViewport,
      layout: rendered ? {x: rect.x, y: rect.y, width: rect.width, height: rect.height} : null,
      parent_id: parentId,
      depth: depth,
    });

    for (const child of el.children) visit(child, id, depth + 1);
  }

  visit(document.documentElement, null, 0);

  return JSON.stringify({
    url: location.href,
    title: document.title,
    viewport: {
      width: vw,
      height: vh,
      scroll_y: window.scrollY,
      content_height: document.documentElement.scrollHeight,
    },
    nodes: nodes,
  });
})()`

// pointJS resolves the topmost element at a viewport point. The %f verbs are
// filled with x and y.
const pointJS = `(() => {
  const el = document.elementFromPoint(%f, %f);
  if (!el) return JSON.stringify(null);
  return JSON.stringify({
    tag: el.tagName.toLowerCase(),
    id_attr: el.id || "",
    class: el.className && el.className.toString ? el.className.toString() : "",
  });
})()`

// scrollViewportJS scrolls the window by a pixel delta and reads back the
// resulting offset and bottom state. The %f verb is the delta.
const scrollViewportJS = `(() => {
  window.scrollBy(0, %f);
  const doc = document.documentElement;
  const offset = window.scrollY;
  const atBottom = offset + window.innerHeight >= doc.scrollHeight - 1;
  return JSON.stringify({offset: offset, at_bottom: atBottom});
})()`

// scrollContainerJS scrolls a named container by a pixel delta. The %q verb
// is the container selector, the %f verb the delta.
const scrollContainerJS = `(() => {
  const el = document.querySelector(%q);
  if (!el) return JSON.stringify(null);
  el.scrollTop += %f;
  const atBottom = el.scrollTop + el.clientHeight >= el.scrollHeight - 1;
  return JSON.stringify({offset: el.scrollTop, at_bottom: atBottom});
})()`

// scrollToJS restores an absolute viewport offset. The %f verb is the target.
const scrollToJS = `(() => {
  window.scrollTo(0, %f);
  return JSON.stringify({offset: window.scrollY, at_bottom: false});
})()`
