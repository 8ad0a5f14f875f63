package sink

// pageCSS styles the chart page, the tooltip and the error panel.
const pageCSS = `
    body { margin: 0; padding: 24px; background: #191414; color: #b3b3b3;
           font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; }
    h1 { color: #1db954; font-size: 20px; margin: 0 0 16px; }
    .mark { cursor: pointer; }
    #TOOLTIP { position: absolute; pointer-events: none; opacity: 0; transition: opacity 0.2s;
               background: rgba(18, 18, 18, 0.95); border: 1px solid #1db954; border-radius: 6px;
               padding: 8px 10px; font-size: 12px; line-height: 1.5; color: #fff; }
    #TOOLTIP.visible { opacity: 1; }
    #TOOLTIP strong { color: #1db954; }
    .error-panel { text-align: center; padding: 50px; color: #b3b3b3; }
    .error-panel h2 { color: #1db954; }
    .error-panel .hint { color: #535353; font-size: 0.9em; }`

// pageJS drives the chart in the browser. It mirrors pkg/interact and
// pkg/join: every (mark, attribute) pair carries a token, a newer tween
// bumps the token and the older tween stops at its next frame.
const pageJS = `
(function () {
  const cfg = JSON.parse(document.getElementById('trackviz-data').textContent);
  const root = document.getElementById(cfg.container);
  const tooltip = document.getElementById(cfg.tooltip);
  const marks = Array.from(root.querySelectorAll('circle.mark'));

  const B = [4/11, 6/11, 8/11, 3/4, 9/11, 10/11, 15/16, 21/22, 63/64];
  const B0 = 1 / B[0] / B[0];
  const elastic = (a, p) => {
    p = p / (2 * Math.PI);
    const s = Math.asin(1 / a) * p;
    const tpmt = x => (Math.pow(2, -10 * x) - 0.0009765625) * 1.0009775171065494;
    return t => t >= 1 ? 1 : 1 - a * tpmt(t) * Math.sin((t + s) / p);
  };
  const easings = {
    linear: t => t,
    cubic: t => ((t *= 2) <= 1 ? t * t * t : (t -= 2) * t * t + 2) / 2,
    back: t => { const s = 1.70158; return --t * t * ((s + 1) * t + s) + 1; },
    bounce: t => t >= 1 ? 1 : t < B[0] ? B0 * t * t : t < B[2] ? B0 * (t -= B[1]) * t + B[3]
      : t < B[5] ? B0 * (t -= B[4]) * t + B[6] : B0 * (t -= B[7]) * t + B[8],
    elastic: elastic(1, 0.3),
  };

  const parseHex = h => [1, 3, 5].map(i => parseInt(h.slice(i, i + 2), 16));
  const hex = rgb => '#' + rgb.map(v => Math.max(0, Math.min(255, v)).toString(16).padStart(2, '0')).join('');
  const mix = (a, b, t) => {
    t = Math.max(0, Math.min(1, t));
    const x = parseHex(a), y = parseHex(b);
    return hex(x.map((v, i) => Math.round(v + (y[i] - v) * t)));
  };

  const tokens = new Map();
  let next = 0;
  function tween(el, attr, to, duration, delay, ease) {
    const key = el.id + '|' + attr;
    const token = ++next;
    tokens.set(key, token);
    const start = performance.now() + delay;
    let from = null;
    function frame(now) {
      if (tokens.get(key) !== token) return;
      if (now < start) { requestAnimationFrame(frame); return; }
      if (from === null) from = el.getAttribute(attr);
      const p = duration > 0 ? Math.min(1, (now - start) / duration) : 1;
      const e = ease(p);
      let v;
      if (attr === 'stroke') {
        v = mix(from, to, e);
      } else {
        const f = parseFloat(from);
        v = f + (to - f) * e;
        if (attr === 'r') v = Math.max(0, v);
        if (attr === 'opacity') v = Math.max(0, Math.min(1, v));
      }
      el.setAttribute(attr, v);
      if (p < 1) requestAnimationFrame(frame);
      else el.setAttribute(attr, to);
    }
    requestAnimationFrame(frame);
  }

  const base = el => parseFloat(el.dataset.r);
  const hover = cfg.timing.hover;
  const cubic = easings.cubic;

  function enter(target) {
    marks.forEach(el => {
      if (el === target) {
        tween(el, 'r', base(el) * cfg.style.hoverRadius, hover, 0, cubic);
        tween(el, 'stroke', cfg.style.hoverStroke, hover, 0, cubic);
        tween(el, 'stroke-width', cfg.style.hoverStrokeWidth, hover, 0, cubic);
        tween(el, 'opacity', cfg.style.hoverOpacity, hover, 0, cubic);
      } else {
        tween(el, 'opacity', cfg.style.dimmedOpacity, hover, 0, cubic);
      }
    });
  }

  function leave() {
    marks.forEach(el => {
      tween(el, 'r', base(el), hover, 0, cubic);
      tween(el, 'stroke', cfg.style.stroke, hover, 0, cubic);
      tween(el, 'stroke-width', cfg.style.strokeWidth, hover, 0, cubic);
      tween(el, 'opacity', cfg.style.opacity, hover, 0, cubic);
    });
  }

  function line(parent, text, strong) {
    const node = document.createElement(strong ? 'strong' : 'span');
    node.textContent = text;
    parent.appendChild(node);
    parent.appendChild(document.createElement('br'));
  }

  function show(el, event) {
    const t = cfg.tooltips[Number(el.dataset.index)];
    tooltip.replaceChildren();
    t.lines.forEach((text, i) => line(tooltip, text, i === 0));
    tooltip.style.left = (event.pageX + cfg.style.tooltipDX) + 'px';
    tooltip.style.top = (event.pageY + cfg.style.tooltipDY) + 'px';
    tooltip.classList.add('visible');
  }

  marks.forEach(el => {
    el.addEventListener('mouseenter', () => enter(el));
    el.addEventListener('mouseleave', leave);
    el.addEventListener('click', event => { event.stopPropagation(); show(el, event); });
  });
  document.addEventListener('click', () => tooltip.classList.remove('visible'));

  const ease = easings[cfg.timing.ease] || easings.elastic;
  marks.forEach((el, i) => tween(el, 'r', base(el), cfg.timing.entrance, i * cfg.timing.stagger, ease));
})();`
