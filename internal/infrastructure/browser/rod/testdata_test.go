//go:build integration

package rod

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<main id="app">
		<h1 class="title">Hello World</h1>
		<p class="lead">Intro</p>
		<script>window.x = 1</script>
	</main>
</body>
</html>`

	UtilityHTML = `<!DOCTYPE html>
<html>
<body>
	<header class="bg-white text-gray-900 p-4">
		<button class="hover:bg-red-500 w-[100px] bg-blue-500 text-white">Go</button>
	</header>
	<section class="md:w-1/2" data-section="pricing"><p>$9</p></section>
</body>
</html>`

	TallHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<div id="top" style="height:2000px;width:1600px;background:#1da1f2">Top</div>
</body>
</html>`

	ReferenceHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Acme</title>
	<style>body{font-family:Georgia,serif;color:#222222} .hero{background:#ff6600}</style>
</head>
<body>
	<header style="position:sticky;background:#000;color:#fff">Acme</header>
	<section class="hero bg-orange-500"><h1>Build faster</h1></section>
	<div style="display:grid"><div>a</div><div>b</div></div>
</body>
</html>`
)
