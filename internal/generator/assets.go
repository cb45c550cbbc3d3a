package generator

// baseCSS is the reset and base component styling shipped with every site.
// The website's custom CSS is appended verbatim after it.
const baseCSS = `/* sitepress base */
*,*::before,*::after{box-sizing:border-box}
body{margin:0;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;line-height:1.5;color:#1a1a1a}
img{max-width:100%;display:block}
.sp-hero{padding:4rem 1.5rem;text-align:center}
.sp-hero h1{margin:0 0 .5rem;font-size:2.5rem}
.sp-hero-sub{margin:0;color:#555;font-size:1.25rem}
.sp-features{display:grid;grid-template-columns:repeat(auto-fit,minmax(220px,1fr));gap:1.5rem;padding:2rem 1.5rem}
.sp-feature h3{margin:0 0 .25rem}
.sp-feature p{margin:0;color:#555}
.sp-text{padding:1rem 1.5rem;max-width:42rem;margin:0 auto}
.sp-markdown{padding:1rem 1.5rem;max-width:42rem;margin:0 auto}
.sp-image{margin:1rem auto}
.sp-image-empty{min-height:4rem;background:#f0f0f0}
.sp-button{display:inline-block;padding:.6rem 1.2rem;background:#1a1a1a;color:#fff;text-decoration:none;border-radius:4px}
.sp-divider{border:none;border-top:1px solid #e0e0e0;margin:2rem 1.5rem}
.sp-block{padding:.5rem 1.5rem}
.sp-island{min-height:3rem;padding:1rem 1.5rem}
.sp-island-loading{color:#888;font-size:.9rem}
.sp-island-error{color:#b00020;font-size:.9rem;border:1px solid #f2c9ce;border-radius:4px;padding:.75rem}
.sp-product-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(200px,1fr));gap:1rem}
.sp-product{border:1px solid #e0e0e0;border-radius:4px;padding:1rem}
.sp-product-price{font-weight:600}
`

// hydrationJS is the client runtime embedded in every deployed site. It
// scans for placeholder elements, fetches each island's server rendering,
// and swaps it in. One island failing must never block its siblings: every
// placeholder gets an independent fetch and its own error state.
//
// The inline bootstrap in each document sets window.__SITEPRESS__ (apiBaseUrl,
// siteId) and calls Sitepress.hydrate().
const hydrationJS = `(function(){
"use strict";
function esc(s){var d=document.createElement("div");d.appendChild(document.createTextNode(String(s==null?"":s)));return d.innerHTML;}
function renderProducts(items){
  var h='<div class="sp-product-grid">';
  (items||[]).forEach(function(p){
    h+='<div class="sp-product"><h4>'+esc(p.name)+'</h4><p class="sp-product-price">'+esc(p.price)+'</p></div>';
  });
  return h+'</div>';
}
var renderers={
  "product-list":function(data){return renderProducts(data.products);},
  "product-detail":function(data){var p=data.product||{};return '<div class="sp-product"><h2>'+esc(p.name)+'</h2><p>'+esc(p.description)+'</p><p class="sp-product-price">'+esc(p.price)+'</p></div>';},
  "cart":function(data){return '<div class="sp-cart">'+esc(data.itemCount||0)+' items — '+esc(data.total||"")+'</div>';},
  "checkout":function(data){return data.html||"";},
  "contact-form":function(data){return data.html||"";}
};
function renderIsland(type,data){
  var r=renderers[type];
  if(r){return r(data||{});}
  return '<pre>'+esc(JSON.stringify(data))+'</pre>';
}
function hydrateOne(cfg,el){
  var type=el.getAttribute("data-component");
  var props={};
  try{props=JSON.parse(el.getAttribute("data-props")||"{}");}catch(e){}
  fetch(cfg.apiBaseUrl+"/api/v1/sites/"+cfg.siteId+"/components/"+encodeURIComponent(type),{
    method:"POST",
    headers:{"Content-Type":"application/json"},
    body:JSON.stringify(props)
  }).then(function(res){
    if(!res.ok){throw new Error("component endpoint returned "+res.status);}
    return res.json();
  }).then(function(data){
    el.innerHTML=renderIsland(type,data);
  }).catch(function(){
    el.innerHTML='<div class="sp-island-error">This section failed to load.</div>';
  });
}
function hydrate(){
  var cfg=window.__SITEPRESS__;
  if(!cfg){return;}
  var nodes=document.querySelectorAll("[data-component]");
  for(var i=0;i<nodes.length;i++){hydrateOne(cfg,nodes[i]);}
}
window.Sitepress={hydrate:hydrate};
})();
`
